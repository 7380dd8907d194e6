package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/takumi/shiftgate/internal/model"
)

const tokenCollection = "api_tokens"

// MongoTokenRepo はMongoDBを使用したAPIトークンリポジトリ。
type MongoTokenRepo struct {
	coll *mongo.Collection
}

// NewMongoTokenRepo はMongoTokenRepoを生成する。
func NewMongoTokenRepo(db *mongo.Database) *MongoTokenRepo {
	return &MongoTokenRepo{coll: db.Collection(tokenCollection)}
}

// FindByClient はクライアントアドレス（_id）でトークンを取得する。見つからない場合はnilを返す。
func (r *MongoTokenRepo) FindByClient(ctx context.Context, clientAddr string) (*model.APIToken, error) {
	token := &model.APIToken{}
	err := r.coll.FindOne(ctx, bson.M{"_id": clientAddr}).Decode(token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find token by client: %w", err)
	}
	return token, nil
}

// FindByToken はトークン文字列でトークンを検索する。見つからない場合はnilを返す。
func (r *MongoTokenRepo) FindByToken(ctx context.Context, tokenStr string) (*model.APIToken, error) {
	token := &model.APIToken{}
	err := r.coll.FindOne(ctx, bson.M{"token": tokenStr}).Decode(token)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	return token, nil
}

// Upsert はトークンをクライアントアドレスをキーに冪等に保存する。
func (r *MongoTokenRepo) Upsert(ctx context.Context, token *model.APIToken) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": token.ID}, token, opts); err != nil {
		return fmt.Errorf("failed to upsert token: %w", err)
	}
	return nil
}

// SetLinkString はトークンにリンク文字列IDを記録する。
// linkIDが空文字の場合はフィールドを取り除く。
func (r *MongoTokenRepo) SetLinkString(ctx context.Context, clientAddr, linkID string) error {
	var update bson.M
	if linkID == "" {
		update = bson.M{"$unset": bson.M{"link_string": ""}}
	} else {
		update = bson.M{"$set": bson.M{"link_string": linkID}}
	}
	if _, err := r.coll.UpdateByID(ctx, clientAddr, update); err != nil {
		return fmt.Errorf("failed to set token link string: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TokenRepository = (*MongoTokenRepo)(nil)
