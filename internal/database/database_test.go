package database_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/database"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestDatabase(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Database Suite")
}

var _ = Describe("Database", func() {
	var (
		ctx context.Context
		db  *gorm.DB
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.Open(internal.DatabaseConfig{
			Driver:       database.DriverSQLite,
			Source:       ":memory:",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		}, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("applies the embedded migrations", func() {
		Expect(database.Migrate(ctx, db, database.DriverSQLite)).To(Succeed())

		version, err := database.Version(ctx, db, database.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeEquivalentTo(2))

		Expect(db.Migrator().HasTable("users")).To(BeTrue())
		Expect(db.Migrator().HasTable("timesheets")).To(BeTrue())
	})

	It("is idempotent", func() {
		Expect(database.Migrate(ctx, db, database.DriverSQLite)).To(Succeed())
		Expect(database.Migrate(ctx, db, database.DriverSQLite)).To(Succeed())
	})

	It("rolls back the latest migration", func() {
		Expect(database.Migrate(ctx, db, database.DriverSQLite)).To(Succeed())
		Expect(database.Rollback(ctx, db, database.DriverSQLite)).To(Succeed())

		Expect(db.Migrator().HasTable("timesheets")).To(BeFalse())
		Expect(db.Migrator().HasTable("users")).To(BeTrue())
	})

	It("exposes the pool through sqlx", func() {
		Expect(database.Migrate(ctx, db, database.DriverSQLite)).To(Succeed())

		x, err := database.SQLX(db, database.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())

		var n int
		Expect(x.GetContext(ctx, &n, "SELECT COUNT(*) FROM users")).To(Succeed())
		Expect(n).To(BeZero())
	})

	It("rejects unknown drivers", func() {
		_, err := database.Open(internal.DatabaseConfig{Driver: "mysql", Source: "x"}, nil)
		Expect(err).To(HaveOccurred())
	})
})
