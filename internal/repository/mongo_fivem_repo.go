package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/takumi/shiftgate/internal/model"
)

const fivemLinkCollection = "fivem_links"

// MongoFivemLinkRepo はMongoDBを使用したFiveM紐付けリポジトリ。読み取り専用。
type MongoFivemLinkRepo struct {
	coll *mongo.Collection
}

// NewMongoFivemLinkRepo はMongoFivemLinkRepoを生成する。
func NewMongoFivemLinkRepo(db *mongo.Database) *MongoFivemLinkRepo {
	return &MongoFivemLinkRepo{coll: db.Collection(fivemLinkCollection)}
}

// FindByID はDiscordユーザーID（_id）で紐付けを取得する。見つからない場合はnilを返す。
func (r *MongoFivemLinkRepo) FindByID(ctx context.Context, discordID string) (*model.FivemLink, error) {
	return r.findOne(ctx, bson.M{"_id": discordID})
}

// FindByLicense はFiveMライセンスで紐付けを検索する。見つからない場合はnilを返す。
func (r *MongoFivemLinkRepo) FindByLicense(ctx context.Context, license string) (*model.FivemLink, error) {
	return r.findOne(ctx, bson.M{"license": license})
}

// FindBySteamID はSteam IDで紐付けを検索する。見つからない場合はnilを返す。
func (r *MongoFivemLinkRepo) FindBySteamID(ctx context.Context, steamID string) (*model.FivemLink, error) {
	return r.findOne(ctx, bson.M{"steam_id": steamID})
}

func (r *MongoFivemLinkRepo) findOne(ctx context.Context, filter bson.M) (*model.FivemLink, error) {
	link := &model.FivemLink{}
	err := r.coll.FindOne(ctx, filter).Decode(link)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fivem link: %w", err)
	}
	return link, nil
}

// compile-time interface check
var _ FivemLinkRepository = (*MongoFivemLinkRepo)(nil)
