package main

import (
	"cardclash/internal/catalog"
	"cardclash/internal/config"
	"cardclash/internal/model"
	"cardclash/internal/repository"
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// seed replaces the question pools in MongoDB, from a JSON file when -file
// is given and from the built-in pools otherwise
func main() {
	file := flag.String("file", "", "JSON file with questions (defaults to the built-in pools)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	cfg := config.Load(logger)

	questions, err := readQuestions(*file)
	if err != nil {
		logger.Fatal("failed to read questions", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	// reject pools the catalog could not serve before touching the database
	if _, err := catalog.New(questions, nil); err != nil {
		logger.Fatal("question set is incomplete", zap.Error(err))
	}

	n, err := repository.NewQuestionRepo(client, cfg.MongoDB).ReplaceAll(ctx, questions)
	if err != nil {
		logger.Fatal("failed to seed questions", zap.Error(err))
	}
	logger.Info("seeded questions", zap.Int("count", n), zap.String("database", cfg.MongoDB))
}

func readQuestions(path string) ([]model.Question, error) {
	if path == "" {
		return catalog.DefaultQuestions()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
