package probes

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
)

// PingProbe halts when the MongoDB deployment stops answering pings
func PingProbe(client *mongo.Client) model.Probe {
	return func(ctx context.Context) model.HealthSignal {
		if err := client.Ping(ctx, nil); err != nil {
			return model.HaltSignal(fmt.Sprintf("mongodb unreachable: %v", err))
		}
		return model.OK()
	}
}

type replSetStatus struct {
	Members []struct {
		Name       string    `bson:"name"`
		StateStr   string    `bson:"stateStr"`
		OptimeDate time.Time `bson:"optimeDate"`
		Healthy    float64   `bson:"health"`
	} `bson:"members"`
}

// ReplicationLagProbe halts when any secondary trails the primary by more
// than maxLag, or when a replica set member reports unhealthy. Standalone
// deployments (no replica set) report ok.
func ReplicationLagProbe(client *mongo.Client, maxLag time.Duration) model.Probe {
	return func(ctx context.Context) model.HealthSignal {
		var status replSetStatus
		err := client.Database("admin").
			RunCommand(ctx, bson.D{{Key: "replSetGetStatus", Value: 1}}).
			Decode(&status)
		if err != nil {
			if cmdErr, ok := err.(mongo.CommandError); ok && cmdErr.Code == 76 {
				// NoReplicationEnabled: standalone deployment
				return model.OK()
			}
			return model.HaltSignal(fmt.Sprintf("replSetGetStatus failed: %v", err))
		}

		var primaryOptime time.Time
		for _, member := range status.Members {
			if member.StateStr == "PRIMARY" {
				primaryOptime = member.OptimeDate
			}
		}
		if primaryOptime.IsZero() {
			return model.HaltSignal("replica set has no primary")
		}

		for _, member := range status.Members {
			if member.Healthy == 0 {
				return model.HaltSignal(fmt.Sprintf("replica set member %s is unhealthy", member.Name))
			}
			if member.StateStr != "SECONDARY" {
				continue
			}
			lag := primaryOptime.Sub(member.OptimeDate)
			if lag > maxLag {
				return model.HaltSignal(fmt.Sprintf("replication lag on %s is %s (max %s)", member.Name, lag, maxLag))
			}
		}

		return model.OK()
	}
}
