package session_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/apiclient"
	"github.com/frahmantamala/timesheet-management/internal/session"
	"github.com/frahmantamala/timesheet-management/internal/session/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

type recordingServer struct {
	mu          sync.Mutex
	authHeaders []string
	registered  []map[string]string
	loginRole   string
}

func (rs *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	rs.authHeaders = append(rs.authHeaders, r.Header.Get("Authorization"))
	rs.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"message":"Invalid email or password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user":  map[string]string{"name": "Ann", "email": body["email"], "role": rs.loginRole},
			"token": "tok-" + body["email"],
		})
	case "/api/auth/register":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":409,"message":"Email is already registered"}`))
			return
		}
		rs.mu.Lock()
		rs.registered = append(rs.registered, body)
		rs.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"registered"}`))
	default:
		_, _ = w.Write([]byte(`[]`))
	}
}

func (rs *recordingServer) lastAuth() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.authHeaders[len(rs.authHeaders)-1]
}

var _ = Describe("Store", func() {
	var (
		rs     *recordingServer
		server *httptest.Server
		store  storage.Storage
		api    *apiclient.Client
		sess   *session.Store
		ctx    context.Context
		logger *slog.Logger
	)

	ping := func() {
		Expect(api.Do(ctx, http.MethodGet, "/timesheets", nil, nil, nil)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		rs = &recordingServer{loginRole: "admin"}
		server = httptest.NewServer(rs)
		store = storage.NewMemoryStorage()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		api = apiclient.New(apiclient.Config{BaseURL: server.URL + "/api"}, session.PersistedToken(store), logger)
		sess = session.NewStore(store, api, logger)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Login", func() {
		It("persists the session and authorizes every later request", func() {
			identity, err := sess.Login(ctx, "ann@example.com", "secret")
			Expect(err).NotTo(HaveOccurred())
			Expect(identity).To(Equal(session.Identity{Name: "Ann", Email: "ann@example.com", Role: internal.RoleAdmin}))
			Expect(sess.State()).To(Equal(session.Authenticated))

			token, err := store.Get(storage.KeyToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-ann@example.com"))
			Expect(sess.Token()).To(Equal(token))

			user, err := store.Get(storage.KeyUser)
			Expect(err).NotTo(HaveOccurred())
			Expect(user).To(MatchJSON(`{"name":"Ann","email":"ann@example.com","role":"admin"}`))

			ping()
			Expect(rs.lastAuth()).To(Equal("Bearer tok-ann@example.com"))
			ping()
			Expect(rs.lastAuth()).To(Equal("Bearer tok-ann@example.com"))
		})

		It("defaults a missing role to employee", func() {
			rs.loginRole = ""

			identity, err := sess.Login(ctx, "bob@example.com", "secret")

			Expect(err).NotTo(HaveOccurred())
			Expect(identity.Role).To(Equal(internal.RoleEmployee))
		})

		It("sends the credentials without a prior token", func() {
			_, err := sess.Login(ctx, "bob@example.com", "secret")
			Expect(err).NotTo(HaveOccurred())
			Expect(rs.authHeaders[0]).To(BeEmpty())
		})

		It("surfaces the server message and leaves the store anonymous", func() {
			_, err := sess.Login(ctx, "ann@example.com", "wrong")

			Expect(err).To(HaveOccurred())
			Expect(internal.IsCode(err, internal.ErrCodeLoginFailed)).To(BeTrue())
			Expect(err.Error()).To(Equal("Invalid email or password"))
			Expect(apiclient.IsUnauthorized(err)).To(BeTrue())
			Expect(sess.State()).To(Equal(session.Anonymous))

			_, err = store.Get(storage.KeyToken)
			Expect(err).To(MatchError(storage.ErrNotFound))
		})

		It("validates locally before sending anything", func() {
			_, err := sess.Login(ctx, "", "")

			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(rs.authHeaders).To(BeEmpty())
		})

		It("reports an unreachable server as a network failure", func() {
			server.Close()

			_, err := sess.Login(ctx, "ann@example.com", "secret")

			Expect(internal.IsCode(err, internal.ErrCodeLoginFailed)).To(BeTrue())
			Expect(internal.IsType(err, internal.ErrorTypeNetwork)).To(BeTrue())
		})
	})

	Describe("Logout", func() {
		It("removes the persisted entries and stops authorizing requests", func() {
			_, err := sess.Login(ctx, "ann@example.com", "secret")
			Expect(err).NotTo(HaveOccurred())

			Expect(sess.Logout()).To(Succeed())

			_, err = store.Get(storage.KeyToken)
			Expect(err).To(MatchError(storage.ErrNotFound))
			_, err = store.Get(storage.KeyUser)
			Expect(err).To(MatchError(storage.ErrNotFound))
			Expect(sess.State()).To(Equal(session.Anonymous))
			Expect(sess.Token()).To(BeEmpty())

			ping()
			Expect(rs.lastAuth()).To(BeEmpty())
		})
	})

	Describe("Restore", func() {
		It("adopts a persisted session without a server round trip", func() {
			Expect(store.Set(storage.KeyToken, "persisted")).To(Succeed())
			Expect(store.Set(storage.KeyUser, `{"name":"Ann","email":"ann@example.com","role":"employee"}`)).To(Succeed())

			sess.Restore(ctx)

			identity, ok := sess.Current()
			Expect(ok).To(BeTrue())
			Expect(identity.Role).To(Equal(internal.RoleEmployee))
			Expect(rs.authHeaders).To(BeEmpty())

			ping()
			Expect(rs.lastAuth()).To(Equal("Bearer persisted"))
		})

		It("stays anonymous when only one entry is present", func() {
			Expect(store.Set(storage.KeyToken, "persisted")).To(Succeed())

			sess.Restore(ctx)

			Expect(sess.State()).To(Equal(session.Anonymous))
			_, err := sess.RequireAuthenticated()
			Expect(internal.IsCode(err, internal.ErrCodeNotAuthenticated)).To(BeTrue())
		})

		It("stays anonymous when the user entry is malformed", func() {
			Expect(store.Set(storage.KeyToken, "persisted")).To(Succeed())
			Expect(store.Set(storage.KeyUser, "{broken")).To(Succeed())

			sess.Restore(ctx)

			Expect(sess.State()).To(Equal(session.Anonymous))
		})

		DescribeTable("stays anonymous when the user entry is empty",
			func(raw string) {
				Expect(store.Set(storage.KeyToken, "persisted")).To(Succeed())
				Expect(store.Set(storage.KeyUser, raw)).To(Succeed())

				sess.Restore(ctx)

				Expect(sess.State()).To(Equal(session.Anonymous))
				_, ok := sess.Current()
				Expect(ok).To(BeFalse())
			},
			Entry("null", "null"),
			Entry("empty object", "{}"),
			Entry("identity without an email", `{"name":"Ann","role":"admin"}`),
		)
	})

	Describe("Register", func() {
		valid := func() session.RegisterDTO {
			return session.RegisterDTO{
				Name:       "Cid",
				Email:      "cid@example.com",
				Password:   "secret",
				EmployeeID: "E-7",
				Department: "Ops",
			}
		}

		It("posts the payload with a default role and does not sign in", func() {
			Expect(sess.Register(ctx, valid())).To(Succeed())

			Expect(rs.registered).To(HaveLen(1))
			Expect(rs.registered[0]).To(HaveKeyWithValue("role", "employee"))
			Expect(rs.registered[0]).To(HaveKeyWithValue("employeeId", "E-7"))
			Expect(sess.State()).To(Equal(session.Anonymous))
		})

		It("requires every field", func() {
			dto := valid()
			dto.Department = ""

			err := sess.Register(ctx, dto)

			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(err.Error()).To(Equal("department is required"))
			Expect(rs.registered).To(BeEmpty())
		})

		It("leaves the email format to the server", func() {
			dto := valid()
			dto.Email = "cid-at-example"

			Expect(sess.Register(ctx, dto)).To(Succeed())
			Expect(rs.registered).To(HaveLen(1))
			Expect(rs.registered[0]).To(HaveKeyWithValue("email", "cid-at-example"))
		})

		It("surfaces the server message", func() {
			dto := valid()
			dto.Email = "taken@example.com"

			err := sess.Register(ctx, dto)

			Expect(internal.IsCode(err, internal.ErrCodeRegistrationFailed)).To(BeTrue())
			Expect(err.Error()).To(Equal("Email is already registered"))
		})
	})
})
