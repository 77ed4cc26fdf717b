// Package xrechnung builds EN 16931 / XRechnung 3.0 invoice documents in the
// UN/CEFACT Cross Industry Invoice (CII) syntax.
//
// Element order inside the document is a compatibility contract with
// downstream conformance checkers (the KoSIT validator is structure
// sensitive), so the builder emits tokens strictly in schema order instead of
// marshalling structs.
package xrechnung

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/tax"
	"github.com/BadRix90/e-invoice-saas/pkg/einvoice"
)

// Official CII namespaces (UN/CEFACT D16B).
const (
	NsRsm = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NsRam = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NsQdt = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
	NsUdt = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
)

// Fixed document context identifiers: Peppol billing process and the
// XRechnung 3.0 guideline (EN 16931 compliant).
const (
	BusinessProcessID = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"
	GuidelineID       = "urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0"
)

// dateFormat102 qualifies a udt:DateTimeString as CCYYMMDD.
const dateFormat102 = "102"

// currencyEUR is the only invoice currency the system issues.
const currencyEUR = "EUR"

// BuildContext carries everything the builder needs for one document.
// Items must already carry their derived amounts in position order.
type BuildContext struct {
	Invoice  *entity.Invoice
	Tenant   *entity.Tenant
	Customer *entity.Customer
	Items    []*entity.InvoiceItem
}

// Builder assembles CII XML documents. Stateless; one document per call.
type Builder struct {
	engine *tax.Engine
}

// NewBuilder constructs the builder.
func NewBuilder() *Builder {
	return &Builder{engine: tax.NewEngine()}
}

// Build generates the complete XRechnung document as a UTF-8 XML string with
// declaration.
func (b *Builder) Build(ctx *BuildContext) (string, error) {
	if ctx == nil || ctx.Invoice == nil || ctx.Tenant == nil || ctx.Customer == nil {
		return "", fmt.Errorf("xrechnung: invoice, tenant and customer are required")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "rsm:CrossIndustryInvoice"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns:rsm"}, Value: NsRsm},
			{Name: xml.Name{Local: "xmlns:ram"}, Value: NsRam},
			{Name: xml.Name{Local: "xmlns:qdt"}, Value: NsQdt},
			{Name: xml.Name{Local: "xmlns:udt"}, Value: NsUdt},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return "", err
	}

	b.writeContext(enc)
	b.writeDocument(enc, ctx.Invoice)
	if err := b.writeTransaction(enc, ctx); err != nil {
		return "", err
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildInvoiceXML is a convenience wrapper around Build.
func (b *Builder) BuildInvoiceXML(invoice *entity.Invoice, tenant *entity.Tenant, customer *entity.Customer, items []*entity.InvoiceItem) (string, error) {
	return b.Build(&BuildContext{Invoice: invoice, Tenant: tenant, Customer: customer, Items: items})
}

// writeContext emits rsm:ExchangedDocumentContext with the fixed business
// process and guideline identifiers.
func (b *Builder) writeContext(enc *xml.Encoder) {
	open(enc, "rsm:ExchangedDocumentContext")
	open(enc, "ram:BusinessProcessSpecifiedDocumentContextParameter")
	writeText(enc, "ram:ID", BusinessProcessID)
	closeEl(enc, "ram:BusinessProcessSpecifiedDocumentContextParameter")
	open(enc, "ram:GuidelineSpecifiedDocumentContextParameter")
	writeText(enc, "ram:ID", GuidelineID)
	closeEl(enc, "ram:GuidelineSpecifiedDocumentContextParameter")
	closeEl(enc, "rsm:ExchangedDocumentContext")
}

// writeDocument emits rsm:ExchangedDocument: number, type code 380, issue
// date and the optional free-text note.
func (b *Builder) writeDocument(enc *xml.Encoder, inv *entity.Invoice) {
	open(enc, "rsm:ExchangedDocument")
	writeText(enc, "ram:ID", inv.InvoiceNumber)
	writeText(enc, "ram:TypeCode", einvoice.TypeCodeCommercialInvoice)
	writeDate(enc, "ram:IssueDateTime", inv.InvoiceDate)
	if inv.Notes != "" {
		open(enc, "ram:IncludedNote")
		writeText(enc, "ram:Content", inv.Notes)
		closeEl(enc, "ram:IncludedNote")
	}
	closeEl(enc, "rsm:ExchangedDocument")
}

func (b *Builder) writeTransaction(enc *xml.Encoder, ctx *BuildContext) error {
	open(enc, "rsm:SupplyChainTradeTransaction")
	for _, item := range ctx.Items {
		b.writeLine(enc, item)
	}
	b.writeAgreement(enc, ctx)
	b.writeDelivery(enc, ctx.Invoice)
	b.writeSettlement(enc, ctx)
	closeEl(enc, "rsm:SupplyChainTradeTransaction")
	return nil
}

// writeLine emits one ram:IncludedSupplyChainTradeLineItem in position order.
func (b *Builder) writeLine(enc *xml.Encoder, item *entity.InvoiceItem) {
	open(enc, "ram:IncludedSupplyChainTradeLineItem")

	open(enc, "ram:AssociatedDocumentLineDocument")
	writeText(enc, "ram:LineID", fmt.Sprintf("%d", item.Position))
	closeEl(enc, "ram:AssociatedDocumentLineDocument")

	open(enc, "ram:SpecifiedTradeProduct")
	if item.SKU != "" {
		writeText(enc, "ram:SellerAssignedID", item.SKU)
	}
	writeText(enc, "ram:Name", item.Description)
	closeEl(enc, "ram:SpecifiedTradeProduct")

	open(enc, "ram:SpecifiedLineTradeAgreement")
	open(enc, "ram:NetPriceProductTradePrice")
	writeAmount(enc, "ram:ChargeAmount", item.UnitPrice)
	closeEl(enc, "ram:NetPriceProductTradePrice")
	closeEl(enc, "ram:SpecifiedLineTradeAgreement")

	open(enc, "ram:SpecifiedLineTradeDelivery")
	writeWithAttr(enc, "ram:BilledQuantity", item.Quantity.StringFixed(3), "unitCode", item.Unit)
	closeEl(enc, "ram:SpecifiedLineTradeDelivery")

	open(enc, "ram:SpecifiedLineTradeSettlement")
	open(enc, "ram:ApplicableTradeTax")
	writeText(enc, "ram:TypeCode", "VAT")
	writeText(enc, "ram:CategoryCode", CategoryCode(item.VatRate))
	writeText(enc, "ram:RateApplicablePercent", item.VatRate.StringFixed(2))
	closeEl(enc, "ram:ApplicableTradeTax")
	open(enc, "ram:SpecifiedTradeSettlementLineMonetarySummation")
	writeAmount(enc, "ram:LineTotalAmount", item.LineTotal)
	closeEl(enc, "ram:SpecifiedTradeSettlementLineMonetarySummation")
	closeEl(enc, "ram:SpecifiedLineTradeSettlement")

	closeEl(enc, "ram:IncludedSupplyChainTradeLineItem")
}

// writeAgreement emits the header trade agreement: buyer reference and both
// trade parties. The Leitweg-ID takes precedence over the buyer reference;
// B2G invoices are rejected without it.
func (b *Builder) writeAgreement(enc *xml.Encoder, ctx *BuildContext) {
	inv, tenant, customer := ctx.Invoice, ctx.Tenant, ctx.Customer

	open(enc, "ram:ApplicableHeaderTradeAgreement")

	if inv.LeitwegID != "" {
		writeText(enc, "ram:BuyerReference", inv.LeitwegID)
	} else if inv.BuyerReference != "" {
		writeText(enc, "ram:BuyerReference", inv.BuyerReference)
	}

	// Seller (BG-4) including the mandatory seller contact (BG-6).
	open(enc, "ram:SellerTradeParty")
	writeText(enc, "ram:Name", tenant.Name)
	open(enc, "ram:DefinedTradeContact")
	writeText(enc, "ram:PersonName", tenant.Name)
	if tenant.Phone != "" {
		open(enc, "ram:TelephoneUniversalCommunication")
		writeText(enc, "ram:CompleteNumber", tenant.Phone)
		closeEl(enc, "ram:TelephoneUniversalCommunication")
	}
	if tenant.Email != "" {
		open(enc, "ram:EmailURIUniversalCommunication")
		writeText(enc, "ram:URIID", tenant.Email)
		closeEl(enc, "ram:EmailURIUniversalCommunication")
	}
	closeEl(enc, "ram:DefinedTradeContact")

	open(enc, "ram:PostalTradeAddress")
	if tenant.ZipCode != "" {
		writeText(enc, "ram:PostcodeCode", tenant.ZipCode)
	}
	if tenant.Street != "" {
		writeText(enc, "ram:LineOne", tenant.Street)
	}
	if tenant.City != "" {
		writeText(enc, "ram:CityName", tenant.City)
	}
	writeText(enc, "ram:CountryID", countryOrDefault(tenant.Country))
	closeEl(enc, "ram:PostalTradeAddress")

	if tenant.Email != "" {
		open(enc, "ram:URIUniversalCommunication")
		writeWithAttr(enc, "ram:URIID", tenant.Email, "schemeID", "EM")
		closeEl(enc, "ram:URIUniversalCommunication")
	}
	if tenant.VatID != "" {
		open(enc, "ram:SpecifiedTaxRegistration")
		writeWithAttr(enc, "ram:ID", tenant.VatID, "schemeID", "VA")
		closeEl(enc, "ram:SpecifiedTaxRegistration")
	}
	closeEl(enc, "ram:SellerTradeParty")

	// Buyer (BG-7).
	open(enc, "ram:BuyerTradeParty")
	writeText(enc, "ram:Name", customer.DisplayName())
	open(enc, "ram:PostalTradeAddress")
	writeText(enc, "ram:PostcodeCode", customer.ZipCode)
	writeText(enc, "ram:LineOne", customer.Street)
	writeText(enc, "ram:CityName", customer.City)
	writeText(enc, "ram:CountryID", countryOrDefault(customer.Country))
	closeEl(enc, "ram:PostalTradeAddress")
	if customer.Email != "" {
		open(enc, "ram:URIUniversalCommunication")
		writeWithAttr(enc, "ram:URIID", customer.Email, "schemeID", "EM")
		closeEl(enc, "ram:URIUniversalCommunication")
	}
	if customer.VatID != "" {
		open(enc, "ram:SpecifiedTaxRegistration")
		writeWithAttr(enc, "ram:ID", customer.VatID, "schemeID", "VA")
		closeEl(enc, "ram:SpecifiedTaxRegistration")
	}
	closeEl(enc, "ram:BuyerTradeParty")

	closeEl(enc, "ram:ApplicableHeaderTradeAgreement")
}

// writeDelivery emits the header delivery block. No separate delivery date is
// modeled; the issue date doubles as the delivery date.
func (b *Builder) writeDelivery(enc *xml.Encoder, inv *entity.Invoice) {
	open(enc, "ram:ApplicableHeaderTradeDelivery")
	open(enc, "ram:ActualDeliverySupplyChainEvent")
	writeDate(enc, "ram:OccurrenceDateTime", inv.InvoiceDate)
	closeEl(enc, "ram:ActualDeliverySupplyChainEvent")
	closeEl(enc, "ram:ApplicableHeaderTradeDelivery")
}

// writeSettlement emits the header settlement: currency, SEPA payment means,
// one tax-breakdown block per distinct rate (descending), payment terms and
// the monetary summation.
func (b *Builder) writeSettlement(enc *xml.Encoder, ctx *BuildContext) {
	inv, tenant := ctx.Invoice, ctx.Tenant

	open(enc, "ram:ApplicableHeaderTradeSettlement")
	writeText(enc, "ram:InvoiceCurrencyCode", currencyEUR)

	// Payment instructions (BG-16), mandatory for XRechnung.
	open(enc, "ram:SpecifiedTradeSettlementPaymentMeans")
	writeText(enc, "ram:TypeCode", einvoice.PaymentMeansSEPACreditTransfer)
	if tenant.IBAN != "" {
		open(enc, "ram:PayeePartyCreditorFinancialAccount")
		writeText(enc, "ram:IBANID", tenant.IBAN)
		closeEl(enc, "ram:PayeePartyCreditorFinancialAccount")
		if tenant.BIC != "" {
			open(enc, "ram:PayeeSpecifiedCreditorFinancialInstitution")
			writeText(enc, "ram:BICID", tenant.BIC)
			closeEl(enc, "ram:PayeeSpecifiedCreditorFinancialInstitution")
		}
	}
	closeEl(enc, "ram:SpecifiedTradeSettlementPaymentMeans")

	// Tax breakdown, one block per distinct VAT rate.
	for _, entry := range b.engine.ComputeVatBreakdown(ctx.Items) {
		open(enc, "ram:ApplicableTradeTax")
		writeAmount(enc, "ram:CalculatedAmount", entry.TaxAmount)
		writeText(enc, "ram:TypeCode", "VAT")
		writeAmount(enc, "ram:BasisAmount", entry.NetAmount)
		writeText(enc, "ram:CategoryCode", CategoryCode(entry.Rate))
		writeText(enc, "ram:RateApplicablePercent", entry.Rate.StringFixed(2))
		closeEl(enc, "ram:ApplicableTradeTax")
	}

	if inv.PaymentTerms != "" {
		open(enc, "ram:SpecifiedTradePaymentTerms")
		writeText(enc, "ram:Description", inv.PaymentTerms)
		if !inv.DueDate.IsZero() {
			writeDate(enc, "ram:DueDateDateTime", inv.DueDate)
		}
		closeEl(enc, "ram:SpecifiedTradePaymentTerms")
	}

	// Monetary summation: grand total equals the due/payable amount because
	// partial payments are out of scope.
	open(enc, "ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	writeAmount(enc, "ram:LineTotalAmount", inv.Subtotal)
	writeAmount(enc, "ram:TaxBasisTotalAmount", inv.Subtotal)
	writeWithAttr(enc, "ram:TaxTotalAmount", inv.TaxAmount.StringFixed(2), "currencyID", currencyEUR)
	writeAmount(enc, "ram:GrandTotalAmount", inv.Total)
	writeAmount(enc, "ram:DuePayableAmount", inv.Total)
	closeEl(enc, "ram:SpecifiedTradeSettlementHeaderMonetarySummation")

	closeEl(enc, "ram:ApplicableHeaderTradeSettlement")
}

// CategoryCode maps a VAT rate to its UNTDID 5305 category code: "Z" for a
// zero rate, "S" otherwise. The reduced 7% rate deliberately shares "S" with
// the standard rate; see the design notes.
func CategoryCode(rate decimal.Decimal) string {
	if rate.IsZero() {
		return einvoice.VatCategoryZero
	}
	return einvoice.VatCategoryStandard
}

func countryOrDefault(country string) string {
	if country == "" {
		return "DE"
	}
	return country
}

// ── token helpers ─────────────────────────────────────────────────────────────

func open(enc *xml.Encoder, name string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}})
}

func closeEl(enc *xml.Encoder, name string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func writeText(enc *xml.Encoder, name, value string) {
	open(enc, name)
	_ = enc.EncodeToken(xml.CharData(value))
	closeEl(enc, name)
}

func writeAmount(enc *xml.Encoder, name string, amount decimal.Decimal) {
	writeText(enc, name, amount.StringFixed(2))
}

func writeWithAttr(enc *xml.Encoder, name, value, attr, attrValue string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: name},
		Attr: []xml.Attr{{Name: xml.Name{Local: attr}, Value: attrValue}},
	})
	_ = enc.EncodeToken(xml.CharData(value))
	closeEl(enc, name)
}

// writeDate emits a date wrapped in a qualified udt:DateTimeString with
// format 102 (CCYYMMDD).
func writeDate(enc *xml.Encoder, name string, t time.Time) {
	open(enc, name)
	writeWithAttr(enc, "udt:DateTimeString", t.Format("20060102"), "format", dateFormat102)
	closeEl(enc, name)
}
