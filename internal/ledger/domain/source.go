package domain

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// ReferenceType is the persisted discriminator of a SourceRef.
type ReferenceType string

const (
	ReferenceInvoice       ReferenceType = "invoice"
	ReferenceReceipt       ReferenceType = "receipt"
	ReferencePurchase      ReferenceType = "purchase_bill"
	ReferenceVendorPayment ReferenceType = "vendor_payment"
	ReferencePosSale       ReferenceType = "pos_sale"
)

// SourceRef links an entry to the document it was posted from. The set of
// implementations is closed to this package.
type SourceRef interface {
	Reference() (ReferenceType, snowflake.ID)
	sourceRef()
}

type (
	InvoiceRef       snowflake.ID
	ReceiptRef       snowflake.ID
	PurchaseRef      snowflake.ID
	VendorPaymentRef snowflake.ID
	PosSaleRef       snowflake.ID
	// ManualRef marks an entry keyed in by hand with no source document.
	ManualRef struct{}
)

func (r InvoiceRef) Reference() (ReferenceType, snowflake.ID) {
	return ReferenceInvoice, snowflake.ID(r)
}

func (r ReceiptRef) Reference() (ReferenceType, snowflake.ID) {
	return ReferenceReceipt, snowflake.ID(r)
}

func (r PurchaseRef) Reference() (ReferenceType, snowflake.ID) {
	return ReferencePurchase, snowflake.ID(r)
}

func (r VendorPaymentRef) Reference() (ReferenceType, snowflake.ID) {
	return ReferenceVendorPayment, snowflake.ID(r)
}

func (r PosSaleRef) Reference() (ReferenceType, snowflake.ID) {
	return ReferencePosSale, snowflake.ID(r)
}

func (ManualRef) Reference() (ReferenceType, snowflake.ID) {
	return "", 0
}

func (InvoiceRef) sourceRef()       {}
func (ReceiptRef) sourceRef()       {}
func (PurchaseRef) sourceRef()      {}
func (VendorPaymentRef) sourceRef() {}
func (PosSaleRef) sourceRef()       {}
func (ManualRef) sourceRef()        {}

// ParseSourceRef rebuilds a SourceRef from its persisted columns.
func ParseSourceRef(refType string, id snowflake.ID) (SourceRef, error) {
	switch ReferenceType(refType) {
	case "":
		return ManualRef{}, nil
	case ReferenceInvoice:
		return InvoiceRef(id), nil
	case ReferenceReceipt:
		return ReceiptRef(id), nil
	case ReferencePurchase:
		return PurchaseRef(id), nil
	case ReferenceVendorPayment:
		return VendorPaymentRef(id), nil
	case ReferencePosSale:
		return PosSaleRef(id), nil
	default:
		return nil, fmt.Errorf("unknown reference type %q", refType)
	}
}
