package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/takumi/shiftgate/internal/model"
)

const settingsCollection = "settings"

// MongoSettingsRepo はMongoDBを使用したギルド設定リポジトリ。
// 設定ドキュメントは自由形式であり、型付きビューと生のmapの両方を提供する。
type MongoSettingsRepo struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepo はMongoSettingsRepoを生成する。
func NewMongoSettingsRepo(db *mongo.Database) *MongoSettingsRepo {
	return &MongoSettingsRepo{coll: db.Collection(settingsCollection)}
}

// FindByID は指定ギルドの設定を型付きビューで取得する。見つからない場合はnilを返す。
func (r *MongoSettingsRepo) FindByID(ctx context.Context, guildID string) (*model.GuildSettings, error) {
	settings := &model.GuildSettings{}
	err := r.coll.FindOne(ctx, bson.M{"_id": guildID}).Decode(settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find guild settings: %w", err)
	}
	return settings, nil
}

// FindDocument は指定ギルドの設定ドキュメント全体を生のmapで取得する。
// 見つからない場合はnilを返す。
func (r *MongoSettingsRepo) FindDocument(ctx context.Context, guildID string) (map[string]any, error) {
	var doc bson.M
	err := r.coll.FindOne(ctx, bson.M{"_id": guildID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find guild settings document: %w", err)
	}
	return doc, nil
}

// MergeSection は設定ドキュメントの指定セクション配下のキーのみを
// ドット記法の$setでマージ更新する。セクション外のキーには触れない。
func (r *MongoSettingsRepo) MergeSection(ctx context.Context, guildID, section string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range fields {
		set[section+"."+k] = v
	}
	if _, err := r.coll.UpdateByID(ctx, guildID, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to merge guild settings section: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SettingsRepository = (*MongoSettingsRepo)(nil)
