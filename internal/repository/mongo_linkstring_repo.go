package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/takumi/shiftgate/internal/model"
)

const linkStringCollection = "link_strings"

// MongoLinkStringRepo はMongoDBを使用したリンク文字列リポジトリ。
type MongoLinkStringRepo struct {
	coll *mongo.Collection
}

// NewMongoLinkStringRepo はMongoLinkStringRepoを生成する。
func NewMongoLinkStringRepo(db *mongo.Database) *MongoLinkStringRepo {
	return &MongoLinkStringRepo{coll: db.Collection(linkStringCollection)}
}

// FindByID は指定IDのリンク文字列を取得する。見つからない場合はnilを返す。
func (r *MongoLinkStringRepo) FindByID(ctx context.Context, id string) (*model.LinkString, error) {
	link := &model.LinkString{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(link)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link string: %w", err)
	}
	return link, nil
}

// SetAuthorization はリンク文字列にトークンと発行元クライアントアドレスを記録する。
// link_stringフィールドには自身のIDを複製する（既存クライアントが参照するため残す）。
func (r *MongoLinkStringRepo) SetAuthorization(ctx context.Context, id, token, ip string) error {
	update := bson.M{"$set": bson.M{
		"token":       token,
		"ip":          ip,
		"link_string": id,
	}}
	if _, err := r.coll.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("failed to set link string authorization: %w", err)
	}
	return nil
}

// ClearAuthorization はSetAuthorizationで付与した認可情報を取り除く。
func (r *MongoLinkStringRepo) ClearAuthorization(ctx context.Context, id string) error {
	update := bson.M{"$unset": bson.M{
		"token":       "",
		"ip":          "",
		"link_string": "",
	}}
	if _, err := r.coll.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("failed to clear link string authorization: %w", err)
	}
	return nil
}

// compile-time interface check
var _ LinkStringRepository = (*MongoLinkStringRepo)(nil)
