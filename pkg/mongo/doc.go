// Package mongo opens the MongoDB client behind the mongo preview store.
//
//	client, err := mongo.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Disconnect(context.Background())
//
//	coll := client.Database(cfg.Database).Collection(cfg.Collection)
package mongo
