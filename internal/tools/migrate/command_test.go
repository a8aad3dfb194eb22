package migrate

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hashebooks/hashebooks-backend/internal/database"
)

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestPlanDetailsBeforeAndAfterMigrate(t *testing.T) {
	db := openTestDB(t, "migrate_plan")

	details, err := planDetails(db)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(strings.Join(details, "\n"), "would create table: users") {
		t.Fatalf("expected users to be planned for creation, got %v", details)
	}
	if details[len(details)-1] != "no mutation executed in plan mode" {
		t.Fatalf("unexpected trailer: %v", details)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	details, err = planDetails(db)
	if err != nil {
		t.Fatalf("plan after migrate: %v", err)
	}
	for _, d := range details {
		if strings.HasPrefix(d, "would create table") {
			t.Fatalf("nothing should be created after migrate: %v", details)
		}
	}
}

func TestStatusDetailsSortedAndPresent(t *testing.T) {
	db := openTestDB(t, "migrate_status")
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	details, err := statusDetails(db)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(details) != len(database.Models()) {
		t.Fatalf("expected one line per model, got %v", details)
	}
	for i := 1; i < len(details); i++ {
		if details[i-1] > details[i] {
			t.Fatalf("details not sorted: %v", details)
		}
	}
	for _, d := range details {
		if !strings.HasSuffix(d, ": present") {
			t.Fatalf("expected every table present: %v", details)
		}
	}
}
