// Package environment models the deployment environment (development,
// staging, production) and carries it through request contexts.
//
//	env := environment.Parse(cfg.AppEnv)
//	log := logger.New(os.Stdout, logger.WithEnvironment(env, "mailmerge"))
//	r.Use(environment.Middleware(env))
package environment
