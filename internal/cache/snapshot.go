package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const keyPrefix = "careertrack"

// Snapshots はユーザー・世代・セクション・パラメータをキーとして集計結果をJSONで保存する。
// nilのSnapshotsはキャッシュ無効として振る舞い、常にミスとなる。
// バックエンドのエラーはログに記録して無視し、呼び出し側は再計算する。
type Snapshots struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewSnapshots はSnapshotsを生成する。
func NewSnapshots(store Store, ttl time.Duration, logger *slog.Logger) *Snapshots {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshots{store: store, ttl: ttl, logger: logger}
}

func generationKey(userID string) string {
	return fmt.Sprintf("%s:%s:gen", keyPrefix, userID)
}

// SnapshotKey は世代番号を含むキャッシュキーを組み立てる。
// パラメータは検索語などユーザー入力を含むためハッシュ化する。
func SnapshotKey(userID string, generation int64, section string, params ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(params, "\x1f")))
	return fmt.Sprintf("%s:%s:%d:%s:%s", keyPrefix, userID, generation, section, hex.EncodeToString(sum[:8]))
}

func (s *Snapshots) generation(ctx context.Context, userID string) (int64, error) {
	b, ok, err := s.store.Get(ctx, generationKey(userID))
	if err != nil || !ok {
		return 0, err
	}
	return parseGeneration(b), nil
}

// Load はキャッシュされた結果をdstに復元する。ヒットした場合にtrueを返す。
func (s *Snapshots) Load(ctx context.Context, userID, section string, params []string, dst any) bool {
	if s == nil {
		return false
	}
	gen, err := s.generation(ctx, userID)
	if err != nil {
		s.warn("世代番号の取得に失敗しました", userID, err)
		return false
	}
	b, ok, err := s.store.Get(ctx, SnapshotKey(userID, gen, section, params...))
	if err != nil {
		s.warn("キャッシュの取得に失敗しました", userID, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.warn("キャッシュの復元に失敗しました", userID, err)
		return false
	}
	return true
}

// Save は結果を現在の世代のキーで保存する。
func (s *Snapshots) Save(ctx context.Context, userID, section string, params []string, v any) {
	if s == nil {
		return
	}
	gen, err := s.generation(ctx, userID)
	if err != nil {
		s.warn("世代番号の取得に失敗しました", userID, err)
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.warn("キャッシュのエンコードに失敗しました", userID, err)
		return
	}
	if err := s.store.Set(ctx, SnapshotKey(userID, gen, section, params...), b, s.ttl); err != nil {
		s.warn("キャッシュの保存に失敗しました", userID, err)
	}
}

// Invalidate はユーザーの世代番号を進め、既存のスナップショットを参照されなくする。
// 古いキーはTTLで消える。
func (s *Snapshots) Invalidate(ctx context.Context, userID string) {
	if s == nil {
		return
	}
	if _, err := s.store.Incr(ctx, generationKey(userID)); err != nil {
		s.warn("キャッシュの無効化に失敗しました", userID, err)
	}
}

// Forget はユーザーの世代番号キーを削除する。退会時に使用する。
func (s *Snapshots) Forget(ctx context.Context, userID string) {
	if s == nil {
		return
	}
	if err := s.store.Del(ctx, generationKey(userID)); err != nil {
		s.warn("世代番号の削除に失敗しました", userID, err)
	}
}

func (s *Snapshots) warn(msg, userID string, err error) {
	s.logger.Warn(msg,
		slog.String("user_id", userID),
		slog.String("error", err.Error()),
	)
}
