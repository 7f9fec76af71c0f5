package command

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// MinPasswordLength applies to passwords chosen on the command line.
const MinPasswordLength = 8

// PromptPassword reads a password from the terminal without echo.
func PromptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal, pass the password by flag instead")
	}

	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(fd)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from terminal")
	}

	return string(raw), nil
}

// PasswordOrPrompt returns given when it is not empty and prompts otherwise.
func PasswordOrPrompt(given, prompt string) (string, error) {
	if given != "" {
		return given, nil
	}
	return PromptPassword(prompt)
}

// NewPassword returns given or prompts twice for a new password. Either way it
// must be at least MinPasswordLength long.
func NewPassword(given, prompt string) (string, error) {
	if given != "" {
		return given, checkPasswordLength(given)
	}

	password, err := PromptPassword(prompt)
	if err != nil {
		return "", err
	}
	if err := checkPasswordLength(password); err != nil {
		return "", err
	}

	confirm, err := PromptPassword("Confirm password: ")
	if err != nil {
		return "", errors.Wrap(err, "failed to read password confirmation")
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}

	return password, nil
}

func checkPasswordLength(password string) error {
	if len(password) < MinPasswordLength {
		return errors.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
