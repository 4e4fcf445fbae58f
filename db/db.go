package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"debatebot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client
var MongoDatabase *mongo.Database
var TranscriptCollection *mongo.Collection

// extractDBName parses the database name from the URI, defaulting to "debatebot"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "debatebot"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:]
	}
	return "debatebot"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)

	MongoDatabase = client.Database(dbName)
	TranscriptCollection = MongoDatabase.Collection("debate_transcripts")
	return nil
}

// SaveTranscript upserts the transcript snapshot for a session. The in-memory
// store stays the source of truth; the archive is best effort.
func SaveTranscript(t models.DebateTranscript) error {
	if TranscriptCollection == nil {
		return fmt.Errorf("database not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"sessionId": t.SessionID}
	update := bson.M{"$set": bson.M{
		"topic":     t.Topic,
		"botSide":   t.BotSide,
		"history":   t.History,
		"updatedAt": t.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := TranscriptCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		log.Printf("Error saving transcript for session %s: %v", t.SessionID, err)
		return err
	}
	return nil
}
