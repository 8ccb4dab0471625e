package integration

import (
	"testing"

	"github.com/fhuszti/filemgr-ms-go/test/testutil"
)

func TestMigrateUpIntegration(t *testing.T) {
	testDB, err := testutil.SetupTestDB()
	if err != nil {
		t.Fatalf("setup DB: %v", err)
	}
	defer func() { _ = testDB.Cleanup() }()

	tables := []string{
		"storages",
		"storage_files",
		"storage_media",
		"storage_media_images",
		"storage_media_image_sized",
		"storage_media_thumbnails",
	}
	for _, table := range tables {
		var n int
		if err := testDB.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("table %s: %v", table, err)
			continue
		}
		if n != 0 {
			t.Errorf("expected 0 rows in %s after migration, got %d", table, n)
		}
	}
}
