package integration

import (
	"fmt"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/fhuszti/filemgr-ms-go/test/testutil"
)

var (
	MinioEndpoint string
	MinioClient   *minio.Client
	RedisAddr     string
)

func TestMain(m *testing.M) {
	code := func() int {
		dbCleanup, err := setupMariaDB()
		if err != nil {
			fmt.Fprintf(os.Stderr, "DB setup failed: %v\n", err)
			return 1
		}
		defer dbCleanup()

		mi, err := testutil.StartMinIOContainer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "MinIO setup failed: %v\n", err)
			return 1
		}
		defer mi.Cleanup()
		MinioEndpoint, MinioClient = mi.Endpoint, mi.Client

		rc, err := testutil.StartRedisContainer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Redis setup failed: %v\n", err)
			return 1
		}
		defer rc.Cleanup()
		RedisAddr = rc.Addr

		return m.Run()
	}()

	os.Exit(code)
}

func setupMariaDB() (cleanup func(), err error) {
	if os.Getenv("TEST_DB_DSN") != "" {
		// CI provided it; nothing to clean up
		return func() {}, nil
	}

	mdb, err := testutil.StartMariaDBContainer()
	if err != nil {
		return nil, err
	}
	if err := os.Setenv("TEST_DB_DSN", mdb.DSN); err != nil {
		mdb.Cleanup()
		return nil, err
	}
	return mdb.Cleanup, nil
}
