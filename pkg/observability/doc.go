/*
Package observability turns engine lifecycle events into logs and metrics.

Both are plain domain.LifecycleHooks and combine with Merge:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LoggingHooks(logger))
	m, err := def.Compile(turing.WithLifecycleHooks(hooks))
*/
package observability
