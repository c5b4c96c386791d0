package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReferencePrefix(t *testing.T) {
	tests := []struct {
		requestType RequestType
		want        string
	}{
		{TypeSupplierCreation, "SUP"},
		{TypePOCreation, "PO"},
		{TypeNDA, "NDA"},
		{TypeSupplierAssist, "SUPA"},
		{TypeOtherRequest, "OTHER"},
		{TypePOModification, "OTHER"},
		{RequestType("Something else entirely"), "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.requestType), func(t *testing.T) {
			assert.Equal(t, tt.want, ReferencePrefix(tt.requestType))
		})
	}
}

func TestFormatReference(t *testing.T) {
	assert.Equal(t, "PO001", FormatReference("PO", 1))
	assert.Equal(t, "SUP042", FormatReference("SUP", 42))
	assert.Equal(t, "NDA999", FormatReference("NDA", 999))
	// Past three digits the number widens instead of truncating
	assert.Equal(t, "OTHER1000", FormatReference("OTHER", 1000))
}

func TestRequestStatusIsValid(t *testing.T) {
	for _, s := range []RequestStatus{StatusNotStarted, StatusInProgress, StatusCompleted, StatusClosed, StatusCanceled} {
		assert.True(t, s.IsValid(), "expected %q to be valid", s)
	}
	assert.False(t, RequestStatus("Pending").IsValid())
	assert.False(t, RequestStatus("").IsValid())
}

func TestRequestTypeIsValid(t *testing.T) {
	for _, rt := range []RequestType{TypeSupplierCreation, TypePOCreation, TypeNDA, TypeSupplierAssist, TypeOtherRequest, TypePOModification} {
		assert.True(t, rt.IsValid(), "expected %q to be valid", rt)
	}
	assert.False(t, RequestType("po creation").IsValid(), "type matching is case sensitive")
	assert.False(t, RequestType("").IsValid())
}

func TestComputeObjectLabel(t *testing.T) {
	request := &Request{
		RequestType: TypePOCreation,
		Subject:     "Laptop order",
		Reference:   "PO001",
		Status:      StatusNotStarted,
		Requester:   &Requester{Name: "Acme"},
		Buyer:       &Buyer{Name: "Globex"},
	}

	assert.Equal(t, "PO creation_Laptop order_PO001_Acme_Globex_N/A_Not Started", request.ComputeObjectLabel())

	request.User = &User{Username: "jsmith"}
	request.Status = StatusInProgress
	assert.Equal(t, "PO creation_Laptop order_PO001_Acme_Globex_jsmith_In Progress", request.ComputeObjectLabel())
}

func TestComputeObjectLabelWithMissingRelations(t *testing.T) {
	request := &Request{
		RequestType: TypeNDA,
		Subject:     "Mutual NDA",
		Reference:   "NDA003",
		Status:      StatusCompleted,
	}

	assert.Equal(t, "NDA_Mutual NDA_NDA003___N/A_Completed", request.ComputeObjectLabel())
}

func TestOwnerUsername(t *testing.T) {
	request := &Request{}
	assert.Equal(t, "N/A", request.OwnerUsername())

	request.User = &User{Username: "buyer1"}
	assert.Equal(t, "buyer1", request.OwnerUsername())
}

func TestFormatCommentEntry(t *testing.T) {
	at := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	entry := FormatCommentEntry(at, "jsmith", "Ordered from supplier")
	assert.Equal(t, "2024-03-15 09:30:45 - jsmith: Ordered from supplier", entry)
}

func TestAppendComment(t *testing.T) {
	first := "2024-03-15 09:30:45 - jsmith: first"
	second := "2024-03-16 10:00:00 - mdoe: second"

	log := AppendComment("", first)
	assert.Equal(t, first, log)

	log = AppendComment(log, second)
	assert.Equal(t, first+"\n\n"+second, log)
}

func TestHasAttachment(t *testing.T) {
	request := &Request{}
	assert.False(t, request.HasAttachment())

	request.AttachmentPath = "2024/03/abc.pdf"
	assert.True(t, request.HasAttachment())
}
