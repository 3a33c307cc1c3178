package spatial

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ModelFetcher retrieves controller model assets in the background. The
// fetch is best effort: failures are logged, never propagated and never
// retried, and a controller stays fully usable without its model.
type ModelFetcher struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewModelFetcher returns a fetcher resolving assets under baseURL, e.g.
// "https://assets.example.com/models". Asset names are derived from the
// controller's kind and handedness.
func NewModelFetcher(baseURL string, log *slog.Logger) *ModelFetcher {
	return &ModelFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// ModelTask is the handle for one in-flight fetch. Cancel stops the fetch;
// the session cancels it when the owning controller is removed so a late
// completion never touches a destroyed instance.
type ModelTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel aborts the fetch if it is still running.
func (t *ModelTask) Cancel() {
	t.cancel()
	<-t.done
}

// Done returns a channel closed when the fetch goroutine exits.
func (t *ModelTask) Done() <-chan struct{} { return t.done }

// Fetch starts a background fetch for c's model asset and attaches the task
// handle to the controller.
func (f *ModelFetcher) Fetch(c *Controller) *ModelTask {
	ctx, cancel := context.WithCancel(context.Background())
	task := &ModelTask{cancel: cancel, done: make(chan struct{})}
	c.setModelTask(task)

	url := fmt.Sprintf("%s/%s_%s.glb", f.baseURL, c.Kind(), c.Handedness())
	go func() {
		defer close(task.done)
		data, err := f.get(ctx, url)
		if err != nil {
			f.log.Warn("model fetch failed",
				slog.Uint64("source", uint64(c.ID())),
				slog.String("url", url),
				slog.String("error", err.Error()))
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.setModel(data)
		f.log.Debug("model fetched",
			slog.Uint64("source", uint64(c.ID())),
			slog.Int("bytes", len(data)))
	}()
	return task
}

func (f *ModelFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
