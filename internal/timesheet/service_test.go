package timesheet_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/database"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

// interleavingRepository runs hook once, right after the next read, so a
// competing write lands between a service's read and its own write.
type interleavingRepository struct {
	timesheet.Repository
	hook func()
}

func (r *interleavingRepository) GetByID(ctx context.Context, id string) (*timesheet.Record, error) {
	rec, err := r.Repository.GetByID(ctx, id)
	if hook := r.hook; hook != nil {
		r.hook = nil
		hook()
	}
	return rec, err
}

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		service   *timesheet.Service
		published *recordingPublisher

		alice = internal.Principal{ID: "u-alice", Email: "alice@example.com", Name: "Alice", Role: internal.RoleEmployee}
		bob   = internal.Principal{ID: "u-bob", Email: "bob@example.com", Name: "Bob", Role: internal.RoleEmployee}
		admin = internal.Principal{ID: "u-admin", Email: "admin@example.com", Name: "Admin", Role: internal.RoleAdmin}

		form = timesheet.Form{Date: "2024-03-05", PlannedWork: "write report", ActualWork: "wrote report"}
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

		for _, p := range []internal.Principal{alice, bob, admin} {
			Expect(db.Create(&userDatamodel.User{
				ID: p.ID, Email: p.Email, Name: p.Name, PasswordHash: "x",
				EmployeeCode: "E-" + p.Name, Role: string(p.Role), IsActive: true,
			}).Error).To(Succeed())
		}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		published = &recordingPublisher{}
		service = timesheet.NewService(postgres.NewTimesheetRepository(db), logger).WithPublisher(published)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create", func() {
		It("starts every timesheet as pending and joins the owner", func() {
			ts, err := service.Create(ctx, alice, form)
			Expect(err).NotTo(HaveOccurred())

			Expect(ts.ID).NotTo(BeEmpty())
			Expect(ts.Status).To(Equal(timesheet.StatusPending))
			Expect(ts.OwnerName()).To(Equal("Alice"))
			Expect(ts.Employee.EmployeeID).To(Equal("E-Alice"))
		})

		It("rejects an invalid form", func() {
			_, err := service.Create(ctx, alice, timesheet.Form{Date: "tomorrow"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("ListOwn", func() {
		It("only returns the caller's timesheets, newest first", func() {
			_, err := service.Create(ctx, alice, form)
			Expect(err).NotTo(HaveOccurred())
			later := form
			later.Date = "2024-03-07"
			_, err = service.Create(ctx, alice, later)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(ctx, bob, form)
			Expect(err).NotTo(HaveOccurred())

			items, err := service.ListOwn(ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(items[0].Day()).To(Equal("2024-03-07"))
			Expect(items[1].Day()).To(Equal("2024-03-05"))
		})
	})

	Describe("Update and Delete", func() {
		var created *timesheet.Timesheet

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, alice, form)
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets the owner edit a pending timesheet", func() {
			changed := form
			changed.ActualWork = "wrote half"

			ts, err := service.Update(ctx, alice, created.ID, changed)
			Expect(err).NotTo(HaveOccurred())
			Expect(ts.ActualWork).To(Equal("wrote half"))
			Expect(ts.Status).To(Equal(timesheet.StatusPending))
		})

		It("hides other people's timesheets", func() {
			_, err := service.Update(ctx, bob, created.ID, form)
			Expect(err).To(MatchError(internal.ErrTimesheetNotFound))

			Expect(service.Delete(ctx, bob, created.ID)).To(MatchError(internal.ErrTimesheetNotFound))
		})

		It("refuses to touch an accepted timesheet", func() {
			_, err := service.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "accepted"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(ctx, alice, created.ID, form)
			Expect(err).To(MatchError(internal.ErrTimesheetNotEditable))
			Expect(service.Delete(ctx, alice, created.ID)).To(MatchError(internal.ErrTimesheetNotEditable))
		})

		It("keeps a rejected timesheet editable and its status unchanged", func() {
			_, err := service.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "rejected", AdminComments: "add detail"})
			Expect(err).NotTo(HaveOccurred())

			ts, err := service.Update(ctx, alice, created.ID, form)
			Expect(err).NotTo(HaveOccurred())
			Expect(ts.Status).To(Equal(timesheet.StatusRejected))
			Expect(ts.AdminComments).To(Equal("add detail"))
		})

		It("deletes a pending timesheet", func() {
			Expect(service.Delete(ctx, alice, created.ID)).To(Succeed())

			items, err := service.ListOwn(ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})
	})

	Describe("Review", func() {
		var created *timesheet.Timesheet

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, alice, form)
			Expect(err).NotTo(HaveOccurred())
		})

		It("requires an admin", func() {
			_, err := service.Review(ctx, bob, created.ID, timesheet.ReviewDTO{Status: "accepted"})
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("stores the approved alias as accepted", func() {
			ts, err := service.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "approved"})
			Expect(err).NotTo(HaveOccurred())
			Expect(ts.Status).To(Equal(timesheet.StatusAccepted))
		})

		It("only reviews pending timesheets", func() {
			_, err := service.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "rejected"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "accepted"})
			Expect(err).To(MatchError(internal.ErrTimesheetNotReviewable))
		})

		It("reports a missing timesheet", func() {
			_, err := service.Review(ctx, admin, "nope", timesheet.ReviewDTO{Status: "accepted"})
			Expect(err).To(MatchError(internal.ErrTimesheetNotFound))
		})
	})

	Describe("ListAll", func() {
		BeforeEach(func() {
			for _, c := range []struct {
				p    internal.Principal
				date string
			}{{alice, "2024-03-01"}, {alice, "2024-03-10"}, {bob, "2024-03-05"}} {
				f := form
				f.Date = c.date
				_, err := service.Create(ctx, c.p, f)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns everyone's timesheets", func() {
			items, err := service.ListAll(ctx, timesheet.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(3))
		})

		It("filters by employee and date range", func() {
			items, err := service.ListAll(ctx, timesheet.Filter{EmployeeID: alice.ID, StartDate: "2024-03-02"})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Day()).To(Equal("2024-03-10"))

			items, err = service.ListAll(ctx, timesheet.Filter{StartDate: "2024-03-01", EndDate: "2024-03-05"})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
		})

		It("exports with the owner columns", func() {
			data, err := service.ExportAll(ctx, timesheet.Filter{EmployeeID: bob.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("Bob"))
			Expect(string(data)).NotTo(ContainSubstring("Alice"))
		})
	})

	Describe("Concurrent writes", func() {
		var (
			created *timesheet.Timesheet
			racing  *interleavingRepository
			raced   *timesheet.Service
		)

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, alice, form)
			Expect(err).NotTo(HaveOccurred())

			racing = &interleavingRepository{Repository: postgres.NewTimesheetRepository(db)}
			raced = timesheet.NewService(racing, slog.New(slog.NewTextHandler(io.Discard, nil)))
		})

		It("does not undo a review that lands during an edit", func() {
			racing.hook = func() {
				_, err := service.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "accepted"})
				Expect(err).NotTo(HaveOccurred())
			}

			changed := form
			changed.PlannedWork = "rewritten"
			_, err := raced.Update(ctx, alice, created.ID, changed)
			Expect(err).To(MatchError(internal.ErrTimesheetNotEditable))

			items, err := service.ListOwn(ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Status).To(Equal(timesheet.StatusAccepted))
			Expect(items[0].PlannedWork).To(Equal(form.PlannedWork))

			stored, err := postgres.NewTimesheetRepository(db).GetByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ReviewedBy).To(HaveValue(Equal(admin.ID)))
		})

		It("lets only the first of two overlapping reviews win", func() {
			racing.hook = func() {
				_, err := service.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "rejected", AdminComments: "first"})
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := raced.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "accepted"})
			Expect(err).To(MatchError(internal.ErrTimesheetNotReviewable))

			items, err := service.ListOwn(ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(items[0].Status).To(Equal(timesheet.StatusRejected))
			Expect(items[0].AdminComments).To(Equal("first"))
		})

		It("does not delete a timesheet accepted during the delete", func() {
			racing.hook = func() {
				_, err := service.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "accepted"})
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(raced.Delete(ctx, alice, created.ID)).To(MatchError(internal.ErrTimesheetNotEditable))

			items, err := service.ListOwn(ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
		})
	})

	It("announces submissions and reviews", func() {
		created, err := service.Create(ctx, alice, form)
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Review(ctx, admin, created.ID, timesheet.ReviewDTO{Status: "rejected", AdminComments: "redo"})
		Expect(err).NotTo(HaveOccurred())

		Expect(published.events).To(HaveLen(2))
		Expect(published.events[0].EventType()).To(Equal(events.EventTypeTimesheetSubmitted))

		reviewed, ok := published.events[1].(*events.TimesheetReviewedEvent)
		Expect(ok).To(BeTrue())
		Expect(reviewed.EmployeeID).To(Equal(alice.ID))
		Expect(reviewed.ReviewerID).To(Equal(admin.ID))
		Expect(reviewed.Status).To(Equal("rejected"))
	})
})
