package logger_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	Describe("ParseLevel", func() {
		It("maps known level names", func() {
			Expect(logger.ParseLevel("debug")).To(Equal(slog.LevelDebug))
			Expect(logger.ParseLevel("WARN")).To(Equal(slog.LevelWarn))
			Expect(logger.ParseLevel("error")).To(Equal(slog.LevelError))
		})

		It("falls back to info", func() {
			Expect(logger.ParseLevel("")).To(Equal(slog.LevelInfo))
			Expect(logger.ParseLevel("verbose")).To(Equal(slog.LevelInfo))
		})
	})

	Describe("ConsoleHandler", func() {
		var (
			inner   *bytes.Buffer
			console *bytes.Buffer
			log     *slog.Logger
		)

		BeforeEach(func() {
			inner = &bytes.Buffer{}
			console = &bytes.Buffer{}
			base := slog.NewJSONHandler(inner, &slog.HandlerOptions{Level: slog.LevelDebug})
			log = slog.New(logger.NewConsoleHandler(base, console, slog.LevelWarn))
		})

		It("forwards every record to the wrapped handler", func() {
			log.Info("loaded timesheets", "count", 3)
			Expect(inner.String()).To(ContainSubstring(`"msg":"loaded timesheets"`))
			Expect(console.Len()).To(BeZero())
		})

		It("mirrors records at or above the console level", func() {
			log.With("screen", "timesheets").Warn("request failed", "status", 500)
			Expect(console.String()).To(ContainSubstring("request failed"))
			Expect(console.String()).To(ContainSubstring("screen=timesheets"))
			Expect(console.String()).To(ContainSubstring("status=500"))
		})
	})

	Describe("context helpers", func() {
		It("returns the logger stored in the context", func() {
			l := slog.New(slog.NewTextHandler(io.Discard, nil))
			ctx := logger.Into(context.Background(), l)
			Expect(logger.From(ctx)).To(BeIdenticalTo(l))
		})

		It("falls back to the default logger", func() {
			Expect(logger.From(context.Background())).NotTo(BeNil())
		})
	})
})
