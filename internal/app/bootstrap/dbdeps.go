// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/sangathan/internal/app/system/assist"
	"github.com/dalemusser/sangathan/internal/app/system/tasks"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// With the memory backend MongoClient and MongoDatabase are nil and Stores
// holds in-process stores. Redis is nil unless redis_addr is set.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Redis         *redis.Client
	Stores        Stores

	// Background holds what BuildHandler starts and Shutdown stops.
	Background *Background
}

// Background is the long-lived machinery started after the handler is built.
type Background struct {
	Scheduler *tasks.Scheduler
	Assist    *assist.Client
}
