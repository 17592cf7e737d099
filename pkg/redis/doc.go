// Package redis opens the Redis client behind the redis preview store.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	r.Get("/health/ready", httpserver.HealthCheckHandler(log, redis.Ping(client)))
package redis
