package screen_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/admin"
	"github.com/frahmantamala/timesheet-management/internal/apiclient"
	"github.com/frahmantamala/timesheet-management/internal/employee"
	"github.com/frahmantamala/timesheet-management/internal/screen"
	"github.com/frahmantamala/timesheet-management/internal/session"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestScreen(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Screen Suite")
}

var _ = BeforeSuite(func() {
	color.NoColor = true
})

// fakeAPI plays all three API surfaces over one in-memory list.
type fakeAPI struct {
	items     []timesheet.Timesheet
	employees []employee.Employee
	listCalls int
	updates   int
	reviews   []timesheet.ReviewDTO
	listErr   error
	dashErr   error
	filters   []timesheet.Filter
	nextID    int
}

func (f *fakeAPI) List(context.Context) ([]timesheet.Timesheet, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]timesheet.Timesheet(nil), f.items...), nil
}

func (f *fakeAPI) Create(_ context.Context, form timesheet.Form) (*timesheet.Timesheet, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	f.nextID++
	t := timesheet.Timesheet{
		ID: string(rune('a' + f.nextID)), Date: form.Date, PlannedWork: form.PlannedWork,
		ActualWork: form.ActualWork, Remarks: form.Remarks, Status: timesheet.StatusPending,
	}
	f.items = append(f.items, t)
	return &t, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, form timesheet.Form) (*timesheet.Timesheet, error) {
	f.updates++
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].ActualWork = form.ActualWork
			return &f.items[i], nil
		}
	}
	return nil, internal.NewServerRejection(404, "Timesheet not found")
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return internal.NewServerRejection(404, "")
}

func (f *fakeAPI) ExportCSV(context.Context) (*apiclient.Blob, error) {
	return &apiclient.Blob{Data: []byte("Date\n")}, nil
}

func (f *fakeAPI) DownloadPDF(context.Context) (*apiclient.Blob, error) {
	return &apiclient.Blob{Data: []byte("%PDF-1.3\n"), ContentType: "application/pdf"}, nil
}

type fakeAdmin struct{ *fakeAPI }

func (f fakeAdmin) Timesheets(_ context.Context, filter timesheet.Filter) ([]timesheet.Timesheet, error) {
	f.filters = append(f.filters, filter)
	return f.List(context.Background())
}

func (f fakeAdmin) review(id string, dto timesheet.ReviewDTO) (*timesheet.Timesheet, error) {
	f.reviews = append(f.reviews, dto)
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = timesheet.ParseStatus(dto.Status)
			f.items[i].AdminComments = dto.AdminComments
			return &f.items[i], nil
		}
	}
	return nil, internal.NewServerRejection(404, "")
}

func (f fakeAdmin) Approve(_ context.Context, id string) (*timesheet.Timesheet, error) {
	return f.review(id, timesheet.ReviewDTO{Status: "accepted"})
}

func (f fakeAdmin) Reject(_ context.Context, id, comments string) (*timesheet.Timesheet, error) {
	return f.review(id, timesheet.ReviewDTO{Status: "rejected", AdminComments: comments})
}

func (f fakeAdmin) ExportCSV(context.Context, timesheet.Filter) (*apiclient.Blob, error) {
	return &apiclient.Blob{Data: []byte("Date\n"), Filename: "all.csv"}, nil
}

func (f fakeAdmin) Dashboard(context.Context) (*admin.Stats, error) {
	if f.dashErr != nil {
		return nil, f.dashErr
	}
	return &admin.Stats{TotalTimesheets: 9, Pending: 9, TotalEmployees: 4}, nil
}

type fakeEmployees struct{ *fakeAPI }

func (f fakeEmployees) List(context.Context) ([]employee.Employee, error) {
	return f.employees, nil
}

func (f fakeEmployees) Create(_ context.Context, form employee.Form) (*employee.Employee, error) {
	e := employee.Employee{ID: "e" + form.EmployeeID, Name: form.Name, Email: form.Email, IsActive: true}
	f.fakeAPI.employees = append(f.fakeAPI.employees, e)
	return &e, nil
}

func (f fakeEmployees) Update(_ context.Context, id string, form employee.Form) (*employee.Employee, error) {
	return nil, internal.NewServerRejection(409, "Email is already registered")
}

func (f fakeEmployees) Delete(_ context.Context, id string) error {
	return nil
}

var (
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	form   = timesheet.Form{Date: "2024-03-05", PlannedWork: "plan", ActualWork: "done", Remarks: "ok"}
)

var _ = Describe("TimesheetList", func() {
	var (
		ctx  context.Context
		api  *fakeAPI
		list *screen.TimesheetList
		out  *bytes.Buffer
	)

	BeforeEach(func() {
		ctx = context.Background()
		api = &fakeAPI{}
		list = screen.NewTimesheetList(api, logger)
		out = &bytes.Buffer{}
	})

	It("shows an empty state", func() {
		Expect(list.Load(ctx)).To(Succeed())
		list.Render(out)
		Expect(out.String()).To(ContainSubstring("No timesheets found."))
	})

	It("lists exactly what was submitted, as pending", func() {
		_, err := list.Submit(ctx, form)
		Expect(err).NotTo(HaveOccurred())
		Expect(api.listCalls).To(Equal(1))

		Expect(list.Items()).To(HaveLen(1))
		got := list.Items()[0]
		Expect(timesheet.FormFrom(got)).To(Equal(form))
		Expect(got.Status).To(Equal(timesheet.StatusPending))

		list.Render(out)
		Expect(out.String()).To(ContainSubstring("Timesheet submitted!"))
		Expect(out.String()).To(ContainSubstring("edit, delete"))
	})

	It("refuses to edit an accepted timesheet without calling the server", func() {
		api.items = []timesheet.Timesheet{{ID: "t1", Status: timesheet.StatusAccepted}}

		_, err := list.Edit(ctx, "t1", form)
		Expect(err).To(HaveOccurred())
		Expect(screen.IsReported(err)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrTimesheetNotEditable)).To(BeTrue())
		Expect(api.updates).To(BeZero())
		Expect(list.Notice()).To(ContainSubstring("Only pending or rejected timesheets can be edited"))
	})

	It("edits a rejected timesheet and re-fetches", func() {
		api.items = []timesheet.Timesheet{{ID: "t1", Status: timesheet.StatusRejected}}

		_, err := list.Edit(ctx, "t1", form)
		Expect(err).NotTo(HaveOccurred())
		Expect(api.updates).To(Equal(1))
		Expect(api.listCalls).To(Equal(2))
		Expect(list.Items()[0].ActualWork).To(Equal("done"))
	})

	It("deletes and re-fetches", func() {
		api.items = []timesheet.Timesheet{{ID: "t1", Status: timesheet.StatusPending}}

		Expect(list.Delete(ctx, "t1")).To(Succeed())
		Expect(list.Items()).To(BeEmpty())
	})

	It("keeps a successful submit when the re-fetch fails", func() {
		api.listErr = errors.New("connection reset")

		created, err := list.Submit(ctx, form)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).NotTo(BeNil())
		Expect(list.Notice()).To(Equal("Timesheet submitted!"))
	})

	It("renders a load failure inline", func() {
		api.listErr = internal.NewNetworkError(errors.New("connection refused"))

		err := list.Load(ctx)
		Expect(screen.IsReported(err)).To(BeTrue())

		list.Render(out)
		Expect(out.String()).To(ContainSubstring("Failed to load timesheets: could not reach the server"))
	})

	It("names the export file", func() {
		blob, err := list.ExportCSV(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(blob.Filename).To(Equal("timesheets.csv"))
	})
})

var _ = Describe("AdminTimesheets", func() {
	var (
		ctx    context.Context
		api    *fakeAPI
		review *screen.AdminTimesheets
	)

	BeforeEach(func() {
		ctx = context.Background()
		api = &fakeAPI{items: []timesheet.Timesheet{
			{ID: "t1", Status: timesheet.StatusPending, Employee: &timesheet.Owner{ID: "e1", Name: "Ana"}},
			{ID: "t2", Status: timesheet.StatusAccepted},
		}}
		review = screen.NewAdminTimesheets(fakeAdmin{api}, logger)
		Expect(review.Load(ctx, timesheet.Filter{EmployeeID: "e1"})).To(Succeed())
	})

	It("approves a pending timesheet", func() {
		ts, err := review.Approve(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		Expect(ts.Status).To(Equal(timesheet.StatusAccepted))
		Expect(review.Items()[0].Status).To(Equal(timesheet.StatusAccepted))
	})

	It("rejects with comments", func() {
		ts, err := review.Reject(ctx, "t1", "too vague")
		Expect(err).NotTo(HaveOccurred())
		Expect(ts.Status).To(Equal(timesheet.StatusRejected))
		Expect(api.reviews).To(Equal([]timesheet.ReviewDTO{{Status: "rejected", AdminComments: "too vague"}}))
	})

	It("only offers review for pending timesheets", func() {
		_, err := review.Approve(ctx, "t2")
		Expect(errors.Is(err, internal.ErrTimesheetNotReviewable)).To(BeTrue())
		Expect(api.reviews).To(BeEmpty())

		out := &bytes.Buffer{}
		review.Render(out)
		Expect(out.String()).To(ContainSubstring("approve, reject"))
		Expect(out.String()).To(ContainSubstring("Ana"))
	})

	It("reports an unknown id", func() {
		_, err := review.Reject(ctx, "nope", "")
		Expect(errors.Is(err, internal.ErrTimesheetNotFound)).To(BeTrue())
	})
})

var _ = Describe("AdminEmployees", func() {
	It("creates, re-fetches and surfaces server messages", func() {
		ctx := context.Background()
		api := &fakeAPI{}
		s := screen.NewAdminEmployees(fakeEmployees{api}, logger)

		Expect(s.Load(ctx)).To(Succeed())
		out := &bytes.Buffer{}
		s.Render(out)
		Expect(out.String()).To(ContainSubstring("No employees found."))

		_, err := s.Create(ctx, employee.Form{Name: "Ana", Email: "ana@example.com", EmployeeID: "7"})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Items()).To(HaveLen(1))

		_, err = s.Update(ctx, "e7", employee.Form{})
		Expect(screen.IsReported(err)).To(BeTrue())
		Expect(s.Notice()).To(Equal("Error updating employee: Email is already registered"))

		found, err := s.Find(ctx, "e7")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.Name).To(Equal("Ana"))
	})
})

var _ = Describe("Dashboard", func() {
	var (
		ctx context.Context
		api *fakeAPI
	)

	BeforeEach(func() {
		ctx = context.Background()
		api = &fakeAPI{
			items: []timesheet.Timesheet{
				{ID: "t1", Status: timesheet.StatusPending},
				{ID: "t2", Status: timesheet.StatusAccepted},
				{ID: "t3", Status: timesheet.StatusRejected},
			},
			employees: []employee.Employee{
				{ID: "a", Role: internal.RoleAdmin},
				{ID: "e1", Role: internal.RoleEmployee},
			},
		}
	})

	newDashboard := func(role internal.Role) *screen.Dashboard {
		return screen.NewDashboard(session.Identity{Name: "Ana", Role: role}, api, fakeAdmin{api}, fakeEmployees{api}, logger)
	}

	It("counts the employee's own timesheets", func() {
		d := newDashboard(internal.RoleEmployee)
		Expect(d.Load(ctx)).To(Succeed())
		Expect(d.Stats()).To(Equal(admin.Stats{TotalTimesheets: 3, Pending: 1, Accepted: 1, Rejected: 1}))

		out := &bytes.Buffer{}
		d.Render(out)
		Expect(out.String()).To(ContainSubstring("Welcome back, Ana!"))
		Expect(out.String()).NotTo(ContainSubstring("Total Employees"))
	})

	It("reads the admin counters", func() {
		d := newDashboard(internal.RoleAdmin)
		Expect(d.Load(ctx)).To(Succeed())
		Expect(d.Stats().TotalEmployees).To(Equal(4))
	})

	It("falls back to counting the admin lists", func() {
		api.dashErr = internal.NewServerRejection(404, "")
		d := newDashboard(internal.RoleAdmin)

		Expect(d.Load(ctx)).To(Succeed())
		Expect(d.Stats()).To(Equal(admin.Stats{TotalTimesheets: 3, Pending: 1, Accepted: 1, Rejected: 1, TotalEmployees: 1}))
	})

	It("submits and refreshes the counters", func() {
		d := newDashboard(internal.RoleEmployee)
		Expect(d.Load(ctx)).To(Succeed())

		_, err := d.Submit(ctx, form)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Stats().Pending).To(Equal(2))
		Expect(d.Notice()).To(Equal("Timesheet submitted!"))
	})

	It("does not offer quick submit to admins", func() {
		d := newDashboard(internal.RoleAdmin)
		_, err := d.Submit(ctx, form)
		Expect(screen.IsReported(err)).To(BeTrue())
	})
})
