package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"abyss-player/models"
)

// playlistRecord 是播放列表的数据库记录。
// Position 维护展示顺序，新记录追加到末尾。
type playlistRecord struct {
	ID       string `gorm:"primaryKey"`
	Name     string
	Position int64 `gorm:"index"`
}

func (playlistRecord) TableName() string { return "playlists" }

// groupRecord 是分组的数据库记录。
type groupRecord struct {
	ID         string `gorm:"primaryKey"`
	PlaylistID string `gorm:"index"`
	Path       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Position   int64 `gorm:"index"`
}

func (groupRecord) TableName() string { return "groups" }

// entryRecord 是条目的数据库记录。
type entryRecord struct {
	ID        string `gorm:"primaryKey"`
	GroupID   string `gorm:"index"`
	Mime      string
	Path      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Position  int64 `gorm:"index"`
}

func (entryRecord) TableName() string { return "entries" }

// SQLiteStore 是基于 gorm + SQLite 的 Store 实现，
// 用于需要跨进程重启保留数据的部署。
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore 打开（必要时创建）数据库文件并完成表迁移。
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := db.AutoMigrate(&playlistRecord{}, &groupRecord{}, &entryRecord{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Playlists 返回播放列表操作视图。
func (s *SQLiteStore) Playlists() PlaylistStore { return (*sqlitePlaylists)(s) }

// Groups 返回分组操作视图。
func (s *SQLiteStore) Groups() GroupStore { return (*sqliteGroups)(s) }

// Entries 返回条目操作视图。
func (s *SQLiteStore) Entries() EntryStore { return (*sqliteEntries)(s) }

// Export 实现 Store 接口。
func (s *SQLiteStore) Export(ctx context.Context) (models.Session, error) {
	playlists, err := s.Playlists().All(ctx)
	if err != nil {
		return models.Session{}, err
	}
	groups, err := s.Groups().All(ctx)
	if err != nil {
		return models.Session{}, err
	}
	entries, err := s.Entries().All(ctx)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{Playlists: playlists, Groups: groups, Entries: entries}, nil
}

// Import 实现 Store 接口。整个替换在单个事务中完成。
func (s *SQLiteStore) Import(ctx context.Context, session models.Session) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"entries", "groups", "playlists"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		for i, playlist := range session.Playlists {
			record := playlistRecord{ID: playlist.ID, Name: playlist.Name, Position: int64(i)}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		for i, group := range session.Groups {
			record := groupRecord{
				ID:         group.ID,
				PlaylistID: group.PlaylistID,
				Path:       group.Meta.Path,
				CreatedAt:  group.Meta.CreatedAt,
				UpdatedAt:  group.Meta.UpdatedAt,
				Position:   int64(i),
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		for i, entry := range session.Entries {
			record := entryRecord{
				ID:        entry.ID,
				GroupID:   entry.GroupID,
				Mime:      entry.Mime,
				Path:      entry.Meta.Path,
				CreatedAt: entry.Meta.CreatedAt,
				UpdatedAt: entry.Meta.UpdatedAt,
				Position:  int64(i),
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// nextPosition 返回表内下一个追加位置。
func nextPosition(tx *gorm.DB, model interface{}) (int64, error) {
	var max *int64
	if err := tx.Model(model).Select("MAX(position)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func groupFromRecord(record groupRecord) models.Group {
	return models.Group{
		ID: record.ID,
		Meta: models.Meta{
			Path:      record.Path,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		},
		PlaylistID: record.PlaylistID,
	}
}

func entryFromRecord(record entryRecord) models.Entry {
	return models.Entry{
		ID:   record.ID,
		Mime: record.Mime,
		Meta: models.Meta{
			Path:      record.Path,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		},
		GroupID: record.GroupID,
	}
}

type sqlitePlaylists SQLiteStore

func (s *sqlitePlaylists) All(ctx context.Context) ([]models.Playlist, error) {
	var records []playlistRecord
	if err := s.db.WithContext(ctx).Order("position").Find(&records).Error; err != nil {
		return nil, err
	}
	playlists := make([]models.Playlist, 0, len(records))
	for _, record := range records {
		playlists = append(playlists, models.Playlist{ID: record.ID, Name: record.Name})
	}
	return playlists, nil
}

func (s *sqlitePlaylists) Find(ctx context.Context, id string) (models.Playlist, error) {
	var record playlistRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Playlist{}, ErrNotFound
	}
	if err != nil {
		return models.Playlist{}, err
	}
	return models.Playlist{ID: record.ID, Name: record.Name}, nil
}

func (s *sqlitePlaylists) Save(ctx context.Context, playlist models.Playlist) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing playlistRecord
		err := tx.First(&existing, "id = ?", playlist.ID).Error
		if err == nil {
			return tx.Model(&existing).Update("name", playlist.Name).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		position, err := nextPosition(tx, &playlistRecord{})
		if err != nil {
			return err
		}
		record := playlistRecord{ID: playlist.ID, Name: playlist.Name, Position: position}
		return tx.Create(&record).Error
	})
}

func (s *sqlitePlaylists) Destroy(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&playlistRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		// 级联删除下属分组与条目。
		var groups []groupRecord
		if err := tx.Find(&groups, "playlist_id = ?", id).Error; err != nil {
			return err
		}
		for _, group := range groups {
			if err := tx.Delete(&entryRecord{}, "group_id = ?", group.ID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&groupRecord{}, "playlist_id = ?", id).Error
	})
}

type sqliteGroups SQLiteStore

func (s *sqliteGroups) All(ctx context.Context) ([]models.Group, error) {
	var records []groupRecord
	if err := s.db.WithContext(ctx).Order("position").Find(&records).Error; err != nil {
		return nil, err
	}
	groups := make([]models.Group, 0, len(records))
	for _, record := range records {
		groups = append(groups, groupFromRecord(record))
	}
	return groups, nil
}

func (s *sqliteGroups) FindByPlaylist(ctx context.Context, playlistID string) ([]models.Group, error) {
	var records []groupRecord
	err := s.db.WithContext(ctx).Order("position").Find(&records, "playlist_id = ?", playlistID).Error
	if err != nil {
		return nil, err
	}
	groups := make([]models.Group, 0, len(records))
	for _, record := range records {
		groups = append(groups, groupFromRecord(record))
	}
	return groups, nil
}

func (s *sqliteGroups) Find(ctx context.Context, id string) (models.Group, error) {
	var record groupRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Group{}, ErrNotFound
	}
	if err != nil {
		return models.Group{}, err
	}
	return groupFromRecord(record), nil
}

func (s *sqliteGroups) Save(ctx context.Context, group models.Group) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing groupRecord
		err := tx.First(&existing, "id = ?", group.ID).Error
		if err == nil {
			return tx.Model(&existing).Updates(map[string]interface{}{
				"playlist_id": group.PlaylistID,
				"path":        group.Meta.Path,
				"created_at":  group.Meta.CreatedAt,
				"updated_at":  group.Meta.UpdatedAt,
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		position, err := nextPosition(tx, &groupRecord{})
		if err != nil {
			return err
		}
		record := groupRecord{
			ID:         group.ID,
			PlaylistID: group.PlaylistID,
			Path:       group.Meta.Path,
			CreatedAt:  group.Meta.CreatedAt,
			UpdatedAt:  group.Meta.UpdatedAt,
			Position:   position,
		}
		return tx.Create(&record).Error
	})
}

func (s *sqliteGroups) Destroy(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&groupRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&entryRecord{}, "group_id = ?", id).Error
	})
}

func (s *sqliteGroups) Sort(ctx context.Context, spec models.SortSpec) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []groupRecord
		if err := tx.Order("position").Find(&records).Error; err != nil {
			return err
		}
		sortByMeta(records, func(r groupRecord) models.Meta {
			return models.Meta{Path: r.Path, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
		}, spec)
		return rewritePositions(tx, len(records), func(i int) (string, interface{}) {
			return records[i].ID, &groupRecord{}
		})
	})
}

func (s *sqliteGroups) Shift(ctx context.Context, id string, offset int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []groupRecord
		if err := tx.Order("position").Find(&records).Error; err != nil {
			return err
		}
		if !shiftByID(records, func(r groupRecord) string { return r.ID }, id, offset) {
			return ErrNotFound
		}
		return rewritePositions(tx, len(records), func(i int) (string, interface{}) {
			return records[i].ID, &groupRecord{}
		})
	})
}

type sqliteEntries SQLiteStore

func (s *sqliteEntries) All(ctx context.Context) ([]models.Entry, error) {
	var records []entryRecord
	if err := s.db.WithContext(ctx).Order("position").Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]models.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, entryFromRecord(record))
	}
	return entries, nil
}

func (s *sqliteEntries) FindByGroup(ctx context.Context, groupID string) ([]models.Entry, error) {
	var records []entryRecord
	err := s.db.WithContext(ctx).Order("position").Find(&records, "group_id = ?", groupID).Error
	if err != nil {
		return nil, err
	}
	entries := make([]models.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, entryFromRecord(record))
	}
	return entries, nil
}

func (s *sqliteEntries) Find(ctx context.Context, id string) (models.Entry, error) {
	var record entryRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Entry{}, ErrNotFound
	}
	if err != nil {
		return models.Entry{}, err
	}
	return entryFromRecord(record), nil
}

func (s *sqliteEntries) Save(ctx context.Context, entry models.Entry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entryRecord
		err := tx.First(&existing, "id = ?", entry.ID).Error
		if err == nil {
			return tx.Model(&existing).Updates(map[string]interface{}{
				"group_id":   entry.GroupID,
				"mime":       entry.Mime,
				"path":       entry.Meta.Path,
				"created_at": entry.Meta.CreatedAt,
				"updated_at": entry.Meta.UpdatedAt,
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		position, err := nextPosition(tx, &entryRecord{})
		if err != nil {
			return err
		}
		record := entryRecord{
			ID:        entry.ID,
			GroupID:   entry.GroupID,
			Mime:      entry.Mime,
			Path:      entry.Meta.Path,
			CreatedAt: entry.Meta.CreatedAt,
			UpdatedAt: entry.Meta.UpdatedAt,
			Position:  position,
		}
		return tx.Create(&record).Error
	})
}

func (s *sqliteEntries) Destroy(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&entryRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteEntries) Sort(ctx context.Context, spec models.SortSpec) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []entryRecord
		if err := tx.Order("position").Find(&records).Error; err != nil {
			return err
		}
		sortByMeta(records, func(r entryRecord) models.Meta {
			return models.Meta{Path: r.Path, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
		}, spec)
		return rewritePositions(tx, len(records), func(i int) (string, interface{}) {
			return records[i].ID, &entryRecord{}
		})
	})
}

func (s *sqliteEntries) Shift(ctx context.Context, id string, offset int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []entryRecord
		if err := tx.Order("position").Find(&records).Error; err != nil {
			return err
		}
		if !shiftByID(records, func(r entryRecord) string { return r.ID }, id, offset) {
			return ErrNotFound
		}
		return rewritePositions(tx, len(records), func(i int) (string, interface{}) {
			return records[i].ID, &entryRecord{}
		})
	})
}

// rewritePositions 按新顺序重写 position 列。
func rewritePositions(tx *gorm.DB, count int, at func(int) (string, interface{})) error {
	for i := 0; i < count; i++ {
		id, model := at(i)
		if err := tx.Model(model).Where("id = ?", id).Update("position", int64(i)).Error; err != nil {
			return err
		}
	}
	return nil
}
