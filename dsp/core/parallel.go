package core

import "golang.org/x/sync/errgroup"

// ForEachChannel calls fn once for every channel index in [0, n).
// Channels run concurrently up to cfg.Workers; fn must only touch state
// owned by its own channel. The first error returned by fn is reported.
func ForEachChannel(cfg ProcessorConfig, n int, fn func(ch int) error) error {
	if cfg.Workers == 1 || n <= 1 {
		for ch := range n {
			if err := fn(ch); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}

	for ch := range n {
		g.Go(func() error {
			return fn(ch)
		})
	}

	return g.Wait()
}
