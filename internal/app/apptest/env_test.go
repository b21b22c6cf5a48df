package apptest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"weavebooks/internal/domain/plan"
	"weavebooks/pkg/logger"
)

func TestNew_DiscardsServiceLogs(t *testing.T) {
	e := New(t, plan.KeyFree)

	for _, l := range []*logger.Logger{logger.Default(), logger.FromContext(e.Ctx)} {
		assert.False(t, l.Desugar().Core().Enabled(zapcore.ErrorLevel))
	}
}

func TestNew_EveryPlanLimitIsCounted(t *testing.T) {
	for _, key := range []string{plan.KeyFree, plan.KeyPro, plan.KeyEnterprise} {
		t.Run(key, func(t *testing.T) {
			e := New(t, key)
			u, err := e.Guard.Usage(e.Ctx, e.Scope)
			require.NoError(t, err)

			counted := make(map[plan.Resource]bool, len(u.Lines))
			for _, l := range u.Lines {
				counted[l.Resource] = true
			}
			for r := range plan.Lookup(key).Limits {
				assert.True(t, counted[r], "no usage counter for %s", r)
			}
		})
	}
}
