// Package bootstrap runs a service: it validates the typed configuration,
// initializes logging, starts registered components in order, runs the
// lifecycle hooks, prints a startup summary and stops everything in reverse
// on SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(hubComponent)
//	app.RegisterComponent(server.NewComponent(srv))
//	app.OnReady(func(ctx context.Context) error { ... })
//	err = app.Run(ctx)
package bootstrap
