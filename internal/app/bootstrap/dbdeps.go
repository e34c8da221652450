// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps carries the Mongo handles produced by ConnectDB through the rest
// of the lifecycle hooks. The client is kept alongside the database so
// Shutdown and the health check can reach it.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}
