package notification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderKnownKinds(t *testing.T) {
	data := TemplateData{Name: "Jordan Agent", Email: "jordan@x.com"}

	for _, kind := range []Kind{
		KindRegistrationPending,
		KindApproved,
		KindRejected,
		KindBlocked,
		KindUnblocked,
	} {
		subject, body, err := Render(kind, data)
		require.NoError(t, err, string(kind))
		require.NotEmpty(t, subject, string(kind))
		require.Contains(t, body, "Jordan Agent", string(kind))
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	_, body, err := Render(KindApproved, TemplateData{Name: "<script>alert(1)</script>", Email: "x@x.com"})
	require.NoError(t, err)
	require.False(t, strings.Contains(body, "<script>"))
}

func TestRenderUnknownKind(t *testing.T) {
	_, _, err := Render(Kind("newsletter"), TemplateData{})
	require.Error(t, err)
}
