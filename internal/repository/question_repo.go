package repository

import (
	"cardclash/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuestionRepo holds the trivia pools in MongoDB
type QuestionRepo interface {
	GetAll(ctx context.Context) ([]*model.Question, error)
	// ReplaceAll swaps the whole question set
	ReplaceAll(ctx context.Context, questions []model.Question) (int, error)
}

type questionRepo struct {
	collection *mongo.Collection
}

func NewQuestionRepo(client *mongo.Client, database string) QuestionRepo {
	db := client.Database(database)
	return &questionRepo{
		collection: db.Collection("questions"),
	}
}

func (r *questionRepo) GetAll(ctx context.Context) ([]*model.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "pool", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) ReplaceAll(ctx context.Context, questions []model.Question) (int, error) {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, err
	}
	if len(questions) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(questions))
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = primitive.NewObjectID().Hex()
		}
		docs = append(docs, questions[i])
	}
	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}
