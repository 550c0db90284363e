package upi

import (
	"encoding/base64"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer() *Issuer {
	return NewIssuer(Config{
		PayeeVPA:  "msram.8274@okicici",
		PayeeName: "TEDxSairam",
		Currency:  "INR",
		Note:      "TEDx Ticket",
		QRSize:    128,
	})
}

func TestIssuer_URI_RoundTrip(t *testing.T) {
	issuer := testIssuer()

	uri := issuer.URI(&Form{
		Amount:    decimal.NewFromInt(600),
		Reference: "A1B2C3D4",
	})

	parsed, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "upi", parsed.Scheme)
	assert.Equal(t, "pay", parsed.Host)

	q := parsed.Query()
	assert.Equal(t, "msram.8274@okicici", q.Get("pa"))
	assert.Equal(t, "TEDxSairam", q.Get("pn"))
	assert.Equal(t, "600", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Equal(t, "TEDx Ticket", q.Get("tn"))
	assert.Equal(t, "A1B2C3D4", q.Get("tr"))
}

func TestIssuer_URI_OmitsEmptyReference(t *testing.T) {
	issuer := testIssuer()

	uri := issuer.URI(&Form{Amount: decimal.NewFromInt(400)})

	parsed, err := url.Parse(uri)
	require.NoError(t, err)
	assert.False(t, parsed.Query().Has("tr"))
}

func TestIssuer_DataURL(t *testing.T) {
	issuer := testIssuer()

	dataURL, err := issuer.DataURL(&Form{
		Amount:    decimal.NewFromInt(500),
		Reference: "A1B2C3D4",
	})

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)

	// PNG signature
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, png[:8])
}

func TestIssuer_DataURL_Deterministic(t *testing.T) {
	issuer := testIssuer()
	form := &Form{Amount: decimal.NewFromInt(300), Reference: "FFFF0000"}

	first, err := issuer.DataURL(form)
	require.NoError(t, err)
	second, err := issuer.DataURL(form)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
