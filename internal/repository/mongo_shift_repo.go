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

const (
	shiftCollection        = "shifts"
	shiftArchiveCollection = "shift_archive"
)

// MongoShiftRepo はMongoDBを使用した勤務台帳リポジトリ。
// アクティブな勤務はメンバーごとのドキュメントのdata配列に持ち、
// 終了した勤務はアーカイブコレクションに移す。
type MongoShiftRepo struct {
	shifts  *mongo.Collection
	archive *mongo.Collection
}

// NewMongoShiftRepo はMongoShiftRepoを生成する。
func NewMongoShiftRepo(db *mongo.Database) *MongoShiftRepo {
	return &MongoShiftRepo{
		shifts:  db.Collection(shiftCollection),
		archive: db.Collection(shiftArchiveCollection),
	}
}

// FindByMember は指定メンバーの勤務ドキュメントを取得する。見つからない場合はnilを返す。
func (r *MongoShiftRepo) FindByMember(ctx context.Context, memberID string) (*model.Shift, error) {
	shift := &model.Shift{}
	err := r.shifts.FindOne(ctx, bson.M{"_id": memberID}).Decode(shift)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shift document: %w", err)
	}
	return shift, nil
}

// PushEntry はメンバーの勤務ドキュメントにエントリを追加する。
// ドキュメントが存在しない場合はupsertで作成する。
func (r *MongoShiftRepo) PushEntry(ctx context.Context, memberID string, entry model.ShiftEntry) error {
	opts := options.Update().SetUpsert(true)
	update := bson.M{"$push": bson.M{"data": entry}}
	if _, err := r.shifts.UpdateByID(ctx, memberID, update, opts); err != nil {
		return fmt.Errorf("failed to push shift entry: %w", err)
	}
	return nil
}

// PullEntry はメンバーの勤務ドキュメントから指定ギルドのエントリを取り除く。
func (r *MongoShiftRepo) PullEntry(ctx context.Context, memberID, guildID string) error {
	update := bson.M{"$pull": bson.M{"data": bson.M{"guild": guildID}}}
	if _, err := r.shifts.UpdateByID(ctx, memberID, update); err != nil {
		return fmt.Errorf("failed to pull shift entry: %w", err)
	}
	return nil
}

// Archive は終了した勤務エントリをアーカイブコレクションに記録する。
func (r *MongoShiftRepo) Archive(ctx context.Context, memberID string, entry model.ShiftEntry) error {
	doc := bson.M{
		"_id":        entry.ID,
		"member":     memberID,
		"guild":      entry.Guild,
		"shift_type": entry.ShiftType,
		"started_at": entry.StartedAt,
		"ended_at":   entry.EndedAt,
	}
	if _, err := r.archive.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to archive shift entry: %w", err)
	}
	return nil
}

// ListByGuild は指定ギルドのエントリを含む勤務ドキュメントを全走査で返す。
func (r *MongoShiftRepo) ListByGuild(ctx context.Context, guildID string) ([]*model.Shift, error) {
	filter := bson.M{"data": bson.M{"$elemMatch": bson.M{"guild": guildID}}}
	cursor, err := r.shifts.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts by guild: %w", err)
	}

	var shifts []*model.Shift
	if err := cursor.All(ctx, &shifts); err != nil {
		return nil, fmt.Errorf("failed to iterate shift cursor: %w", err)
	}
	return shifts, nil
}

// compile-time interface check
var _ ShiftRepository = (*MongoShiftRepo)(nil)
