package metrics

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the push gateway job the CLI reports under.
const JobName = "keyvault"

// WriteTextfile writes everything g gathers to path in the text exposition
// format, e.g. for the node_exporter textfile collector. The file is replaced
// atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}

// Push sends everything g gathers to the push gateway at url, replacing the
// previous samples of job.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return errors.Wrapf(err, "failed to push metrics to %s", url)
	}
	return nil
}
