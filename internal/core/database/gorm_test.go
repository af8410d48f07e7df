package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm/logger"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "go-sql-driver dsn untouched",
			in:   "root:secret@tcp(127.0.0.1:3306)/todos?parseTime=true",
			want: "root:secret@tcp(127.0.0.1:3306)/todos?parseTime=true",
		},
		{
			name: "jdbc url",
			in:   "jdbc:mysql://127.0.0.1:3306/todos?useSSL=false&serverTimezone=UTC",
			user: "app", pass: "pw",
			want: "app:pw@tcp(127.0.0.1:3306)/todos?charset=utf8mb4&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "url with credentials",
			in:   "mysql://u:p@db:3306/todos?characterEncoding=utf8",
			want: "u:p@tcp(db:3306)/todos?charset=utf8&parseTime=true",
		},
		{name: "empty", in: "  ", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestNewGormUnsupported(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGormWithZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db, err := NewGorm(Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "info",
		Log:      zap.New(core),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)
	gormLogs := logs.Filter(func(e observer.LoggedEntry) bool { return e.LoggerName == "gorm" })
	assert.NotZero(t, gormLogs.Len())
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "app:****@tcp(db:3306)/todos", maskDSN("app:secret@tcp(db:3306)/todos"))
	assert.Equal(t, "postgres://u:****@h:5432/db", maskDSN("postgres://u:p@ss@h:5432/db"))
	assert.Equal(t, "root@tcp(db)/x", maskDSN("root@tcp(db)/x"))
	assert.Equal(t, "host=h user=u", maskDSN("host=h user=u"))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", sqliteDSN("a.db"))
	assert.Equal(t, "a.db?mode=ro", sqliteDSN("a.db?mode=ro"))
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, logLevel("SILENT"))
	assert.Equal(t, logger.Info, logLevel("info"))
	assert.Equal(t, logger.Warn, logLevel(""))
}
