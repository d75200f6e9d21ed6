package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/apiclient"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAPIClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Client Suite")
}

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *apiclient.Client
		token    string
		lastReq  *http.Request
		lastBody []byte
		handler  http.HandlerFunc
	)

	BeforeEach(func() {
		token = ""
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastReq = r
			lastBody, _ = io.ReadAll(r.Body)
			handler(w, r)
		}))
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		client = apiclient.New(apiclient.Config{BaseURL: server.URL + "/api/", UserAgent: "timesheet-test"},
			apiclient.TokenSourceFunc(func() string { return token }), logger)
	})

	AfterEach(func() {
		server.Close()
	})

	It("joins the path onto the base url and encodes the query", func() {
		var out map[string]bool
		err := client.Do(context.Background(), http.MethodGet, "/admin/timesheets",
			url.Values{"employee": {"e1"}}, nil, &out)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveKeyWithValue("ok", true))
		Expect(lastReq.URL.Path).To(Equal("/api/admin/timesheets"))
		Expect(lastReq.URL.Query().Get("employee")).To(Equal("e1"))
		Expect(lastReq.Header.Get("User-Agent")).To(Equal("timesheet-test"))
	})

	It("sends JSON bodies", func() {
		err := client.Do(context.Background(), http.MethodPost, "timesheets", nil,
			map[string]string{"plannedWork": "a"}, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(lastReq.Header.Get("Content-Type")).To(Equal("application/json"))
		Expect(string(lastBody)).To(MatchJSON(`{"plannedWork":"a"}`))
	})

	Context("authorization header", func() {
		It("is absent without a token", func() {
			Expect(client.Do(context.Background(), http.MethodGet, "/timesheets", nil, nil, nil)).To(Succeed())
			Expect(lastReq.Header.Get("Authorization")).To(BeEmpty())
		})

		It("reads the token before every request", func() {
			token = "first"
			Expect(client.Do(context.Background(), http.MethodGet, "/timesheets", nil, nil, nil)).To(Succeed())
			Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer first"))

			token = "second"
			Expect(client.Do(context.Background(), http.MethodGet, "/timesheets", nil, nil, nil)).To(Succeed())
			Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer second"))

			token = ""
			Expect(client.Do(context.Background(), http.MethodGet, "/timesheets", nil, nil, nil)).To(Succeed())
			Expect(lastReq.Header.Get("Authorization")).To(BeEmpty())
		})
	})

	Context("server rejection", func() {
		It("carries the server message and status", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 400, "message": "date is required"})
			}

			err := client.Do(context.Background(), http.MethodPost, "/timesheets", nil, map[string]string{}, nil)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeExternal))
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(appErr.Message).To(Equal("date is required"))
		})

		It("falls back to the status text", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}

			err := client.Do(context.Background(), http.MethodGet, "/timesheets", nil, nil, nil)

			Expect(apiclient.IsUnauthorized(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("Unauthorized"))
		})

		It("keeps the status through a wrapping error", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}

			err := client.Do(context.Background(), http.MethodGet, "/timesheets", nil, nil, nil)
			wrapped := internal.Wrap(internal.ErrCodeLoginFailed, "Login failed", err)

			Expect(apiclient.StatusCode(wrapped)).To(Equal(http.StatusUnauthorized))
			Expect(internal.IsCode(wrapped, internal.ErrCodeLoginFailed)).To(BeTrue())
			Expect(internal.IsType(wrapped, internal.ErrorTypeExternal)).To(BeTrue())
		})
	})

	It("reports transport failures as network errors", func() {
		server.Close()

		err := client.Do(context.Background(), http.MethodGet, "/timesheets", nil, nil, nil)

		Expect(internal.IsType(err, internal.ErrorTypeNetwork)).To(BeTrue())
		Expect(apiclient.StatusCode(err)).To(BeZero())
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := client.Do(ctx, http.MethodGet, "/timesheets", nil, nil, nil)

		Expect(internal.IsType(err, internal.ErrorTypeNetwork)).To(BeTrue())
	})

	It("downloads raw bodies with their filename", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="timesheets.csv"`)
			_, _ = w.Write([]byte("Date,Status\n2024-01-02,pending\n"))
		}

		blob, err := client.Download(context.Background(), "/timesheets/export/csv", nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(blob.ContentType).To(Equal("text/csv"))
		Expect(blob.Filename).To(Equal("timesheets.csv"))
		Expect(string(blob.Data)).To(ContainSubstring("2024-01-02,pending"))
	})
})
