package sessions_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appsessions "github.com/bryanwahyu/complaint-analyst/internal/application/sessions"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
	"github.com/bryanwahyu/complaint-analyst/internal/observability"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}

var _ = Describe("Service logging", func() {
	It("writes session_id exactly once per line", func() {
		out := &syncBuffer{}
		observability.Setup(out, "json", "debug")
		DeferCleanup(func() { observability.Setup(os.Stdout, "json", "info") })

		client := &mockAI{analyzeFn: func(context.Context, string) (complaints.AnalysisResult, error) {
			return parkStreet, nil
		}}
		svc := appsessions.NewService(client, fixedClock{t: time.Now()}, &seqIDs{})
		v, err := svc.Create(context.Background())
		Expect(err).NotTo(HaveOccurred())

		// the HTTP layer already tags the context
		ctx := observability.WithSessionID(context.Background(), string(v.SessionID))
		_, _ = svc.SetDraft(ctx, v.SessionID, "Garbage on Park Street")
		_, _ = svc.Analyze(ctx, v.SessionID)
		_, _ = svc.Extract(ctx, v.SessionID, appsessions.Upload{Name: "a.png", MediaType: "image/png", Data: []byte{1}})
		Expect(svc.End(ctx, v.SessionID)).To(Succeed())

		lines := out.lines()
		Expect(len(lines)).To(BeNumerically(">=", 5))
		for _, line := range lines {
			Expect(strings.Count(line, `"session_id"`)).To(Equal(1), line)
		}
	})
})
