package archive

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
)

func archiveTestInvoice() (*entity.Invoice, *entity.Customer) {
	inv := &entity.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "RE-2026-0001",
		InvoiceDate:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 2, 24, 0, 0, 0, 0, time.UTC),
		CustomerID:    "cus-1",
		Status:        entity.StatusFinal,
		Format:        entity.FormatZUGFeRD,
		Subtotal:      decimal.RequireFromString("100.00"),
		TaxAmount:     decimal.RequireFromString("19.00"),
		Total:         decimal.RequireFromString("119.00"),
		XMLData:       []byte("<rsm:CrossIndustryInvoice/>"),
		PDFData:       []byte("%PDF-1.7 fake"),
	}
	cus := &entity.Customer{ID: "cus-1", CompanyName: "Beispiel AG", Email: "buchhaltung@beispiel.example"}
	return inv, cus
}

func archiveTestItems() []*entity.InvoiceItem {
	return []*entity.InvoiceItem{{
		Position:    1,
		Description: "Beratungsleistung",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.RequireFromString("100.00"),
		VatRate:     decimal.RequireFromString("19.00"),
		LineTotal:   decimal.RequireFromString("100.00"),
		TaxAmount:   decimal.RequireFromString("19.00"),
	}}
}

func TestBuildBundleContainsAllEntries(t *testing.T) {
	inv, cus := archiveTestInvoice()
	archivedAt := time.Date(2026, 2, 11, 9, 30, 0, 0, time.UTC)

	bundle, err := BuildBundle(inv, cus, archiveTestItems(), archivedAt)
	require.NoError(t, err)

	entries, err := ReadBundle(bundle)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, inv.PDFData, entries[PDFEntry])
	assert.Equal(t, inv.XMLData, entries[XMLEntry])

	var meta Metadata
	require.NoError(t, json.Unmarshal(entries[MetadataEntry], &meta))
	assert.Equal(t, "RE-2026-0001", meta.InvoiceNumber)
	assert.Equal(t, "2026-02-10", meta.InvoiceDate)
	assert.Equal(t, "2026-02-24", meta.DueDate)
	assert.Equal(t, "Beispiel AG", meta.Customer.Name)
	assert.Equal(t, "buchhaltung@beispiel.example", meta.Customer.Email)
	assert.Equal(t, "119.00", meta.Total)
	assert.Equal(t, "EUR", meta.Currency)
	require.Len(t, meta.Items, 1)
	assert.Equal(t, "Beratungsleistung", meta.Items[0].Description)
	assert.Equal(t, "1.000", meta.Items[0].Quantity)
	assert.Equal(t, "2026-02-11T09:30:00Z", meta.ArchivedAt)
}

func TestBuildBundleWithoutDocuments(t *testing.T) {
	inv, cus := archiveTestInvoice()
	inv.XMLData = nil
	inv.PDFData = nil

	bundle, err := BuildBundle(inv, cus, nil, time.Now())
	require.NoError(t, err)

	entries, err := ReadBundle(bundle)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Contains(t, entries, MetadataEntry)
}

func TestReadBundleRejectsMissingMetadata(t *testing.T) {
	_, err := ReadBundle([]byte("not a zip"))
	assert.Error(t, err)
}

func TestHashBundleIsStable(t *testing.T) {
	data := []byte("payload")
	assert.Equal(t, HashBundle(data), HashBundle(data))
	assert.Len(t, HashBundle(data), 64)
	assert.NotEqual(t, HashBundle(data), HashBundle([]byte("payload!")))
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("some-configured-secret")
	require.NoError(t, err)

	plaintext := []byte("gobd bundle bytes")
	blob, err := c.Seal(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, blob)

	opened, err := c.Open(blob)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestCipherKeyDerivationIsDeterministic(t *testing.T) {
	c1, err := NewCipher("shared-secret")
	require.NoError(t, err)
	c2, err := NewCipher("shared-secret")
	require.NoError(t, err)

	blob, err := c1.Seal([]byte("data"))
	require.NoError(t, err)

	opened, err := c2.Open(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), opened)
}

func TestCipherUses32ByteSecretDirectly(t *testing.T) {
	secret := strings.Repeat("k", 32)
	c1, err := NewCipher(secret)
	require.NoError(t, err)

	blob, err := c1.Seal([]byte("data"))
	require.NoError(t, err)

	c2, err := NewCipher(secret)
	require.NoError(t, err)
	opened, err := c2.Open(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), opened)
}

func TestCipherRejectsEmptySecret(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}

func TestOpenFailsOnTamperedCiphertext(t *testing.T) {
	c, err := NewCipher("secret")
	require.NoError(t, err)

	blob, err := c.Seal([]byte("original"))
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0x01
	_, err = c.Open(blob)
	assert.Error(t, err)
}

func TestOpenFailsWithWrongSecret(t *testing.T) {
	c1, err := NewCipher("secret-a")
	require.NoError(t, err)
	blob, err := c1.Seal([]byte("original"))
	require.NoError(t, err)

	c2, err := NewCipher("secret-b")
	require.NoError(t, err)
	_, err = c2.Open(blob)
	assert.Error(t, err)
}

func TestOpenRejectsTruncatedBlob(t *testing.T) {
	c, err := NewCipher("secret")
	require.NoError(t, err)
	_, err = c.Open([]byte{1, 2, 3})
	assert.Error(t, err)
}
