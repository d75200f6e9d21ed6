package employee_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/timesheet-management/internal"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/database"
	"github.com/frahmantamala/timesheet-management/internal/employee"
	"github.com/frahmantamala/timesheet-management/internal/employee/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestEmployee(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Suite")
}

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		repo    employee.Repository
		service *employee.Service

		form = employee.Form{
			Name:       "Ana Lima",
			Email:      " Ana@Example.com ",
			Password:   "secret1",
			EmployeeID: "E-7",
			Department: "Engineering",
		}
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.Open(internal.DatabaseConfig{
			Driver:       database.DriverSQLite,
			Source:       ":memory:",
			MaxOpenConns: 1,
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(database.Migrate(ctx, db, database.DriverSQLite)).To(Succeed())

		repo = postgres.NewEmployeeRepository(db)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = employee.NewService(repo, bcrypt.MinCost, logger)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create", func() {
		It("normalises the email and defaults role and activity", func() {
			e, err := service.Create(ctx, form)
			Expect(err).NotTo(HaveOccurred())

			Expect(e.Email).To(Equal("ana@example.com"))
			Expect(e.Role).To(Equal(internal.RoleEmployee))
			Expect(e.IsActive).To(BeTrue())
			Expect(e.EmployeeID).To(Equal("E-7"))
		})

		It("stores a bcrypt hash, never the password", func() {
			e, err := service.Create(ctx, form)
			Expect(err).NotTo(HaveOccurred())

			u, err := repo.GetByID(ctx, e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.PasswordHash).NotTo(Equal("secret1"))
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1"))).To(Succeed())
		})

		It("refuses a second account with the same email", func() {
			_, err := service.Create(ctx, form)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, form)
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("requires a password", func() {
			f := form
			f.Password = ""
			_, err := service.Create(ctx, f)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("rejects an unknown role", func() {
			f := form
			f.Role = "owner"
			_, err := service.Create(ctx, f)
			Expect(internal.IsCode(err, internal.ErrCodeInvalidRole)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		var created *employee.Employee

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, form)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the password when none is given", func() {
			before, err := repo.GetByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())

			inactive := false
			sales, role := "Sales", "admin"
			f := employee.FormFrom(*created).Apply(employee.Patch{Department: &sales, Role: &role, IsActive: &inactive})
			e, err := service.Update(ctx, created.ID, f)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Department).To(Equal("Sales"))
			Expect(e.Role).To(Equal(internal.RoleAdmin))
			Expect(e.IsActive).To(BeFalse())

			after, err := repo.GetByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.PasswordHash).To(Equal(before.PasswordHash))
		})

		It("refuses to take another account's email", func() {
			other := form
			other.Email = "bea@example.com"
			_, err := service.Create(ctx, other)
			Expect(err).NotTo(HaveOccurred())

			f := employee.FormFrom(*created)
			f.Email = "bea@example.com"
			_, err = service.Update(ctx, created.ID, f)
			Expect(err).To(MatchError(internal.ErrEmailTaken))
		})

		It("reports a missing employee", func() {
			_, err := service.Update(ctx, "missing", employee.FormFrom(*created))
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})
	})

	Describe("Delete", func() {
		var (
			created *employee.Employee
			actor   = internal.Principal{ID: "admin-1", Role: internal.RoleAdmin}
		)

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, form)
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the account together with its timesheets", func() {
			Expect(db.Create(&timesheetDatamodel.Timesheet{
				ID: "t1", EmployeeID: created.ID, Date: "2024-03-05",
				PlannedWork: "a", ActualWork: "b", Status: "pending",
			}).Error).To(Succeed())

			Expect(service.Delete(ctx, actor, created.ID)).To(Succeed())

			var count int64
			Expect(db.Model(&timesheetDatamodel.Timesheet{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())

			_, err := service.Get(ctx, created.ID)
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})

		It("does not let an admin delete themselves", func() {
			self := internal.Principal{ID: created.ID, Role: internal.RoleAdmin}
			err := service.Delete(ctx, self, created.ID)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("reports a missing employee", func() {
			Expect(service.Delete(ctx, actor, "missing")).To(MatchError(internal.ErrEmployeeNotFound))
		})
	})

	It("lists employees by name", func() {
		second := form
		second.Name = "Bea"
		second.Email = "bea@example.com"
		_, err := service.Create(ctx, second)
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Create(ctx, form)
		Expect(err).NotTo(HaveOccurred())

		list, err := service.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
		Expect(list[0].Name).To(Equal("Ana Lima"))
	})
})

var _ = Describe("Form", func() {
	It("only checks presence on the client", func() {
		f := employee.Form{Name: "Ana", Email: "ana-at-example", EmployeeID: "E-1"}
		Expect(f.RequireFields()).To(Succeed())
		Expect(f.RequireCreateFields()).To(MatchError("password is required"))
		Expect(f.ValidateUpdate()).To(HaveOccurred())
	})

	It("clears a field patched to an empty value", func() {
		empty := ""
		f := employee.FormFrom(employee.Employee{Name: "Ana", Department: "Ops"}).Apply(employee.Patch{Department: &empty})
		Expect(f.Department).To(BeEmpty())
		Expect(f.Name).To(Equal("Ana"))
	})
})
