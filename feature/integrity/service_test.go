package integrity

import (
	"context"
	"testing"

	"accounting-sync/core/storage/mocks"
	"accounting-sync/feature/integrity/checks"
	"accounting-sync/feature/migration/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func emptyListing() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func TestService_Schema(t *testing.T) {
	svc := NewService(nil, "test-bucket", zap.NewNop(), setupSQLite(t))

	report, err := svc.CheckSchema()
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Contains(t, report.TableNames(), "migration_rows")
}

func TestService_Storage(t *testing.T) {
	t.Run("Missing folders and objects", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyListing())

		svc := NewService(mockClient, "test-bucket", zap.NewNop(), nil, "snapshots/store.json")
		report, err := svc.CheckStorage(context.Background())
		require.NoError(t, err)
		assert.Equal(t, checks.RequiredPrefixes, report.MissingFolders)
		assert.Equal(t, []string{"snapshots/store.json"}, report.MissingObjects)
	})

	t.Run("Storage not configured", func(t *testing.T) {
		svc := NewService(nil, "test-bucket", zap.NewNop(), nil)
		_, err := svc.CheckStorage(context.Background())
		assert.Error(t, err)
		assert.Error(t, svc.FixStorage(context.Background(), []string{"reports"}))
	})

	t.Run("Fix", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("PutObject", mock.Anything, "test-bucket", "snapshots/", mock.Anything, int64(0), mock.Anything).
			Return(minio.UploadInfo{}, nil)

		svc := NewService(mockClient, "test-bucket", zap.NewNop(), nil)
		assert.NoError(t, svc.FixStorage(context.Background(), []string{"snapshots"}))
		mockClient.AssertExpectations(t)
	})
}

func TestLoader(t *testing.T) {
	feature := NewFeature(new(mocks.Client), "test-bucket", zap.NewNop(), nil)

	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())
}
