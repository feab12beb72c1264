package numbering

// Status is an inquiry workflow stage.
type Status string

const (
	StatusEnquiry         Status = "Enquiry"
	StatusInputs          Status = "Inputs"
	StatusInspection      Status = "Inspection"
	StatusEnquiryHold     Status = "Enquiry Hold"
	StatusPending         Status = "Pending"
	StatusQuotation       Status = "Quotation"
	StatusNegotiation     Status = "Negotiation"
	StatusPOConfirm       Status = "PO-Confirm"
	StatusPOHold          Status = "PO Hold"
	StatusDesign          Status = "Design"
	StatusDesignReview    Status = "Design Review"
	StatusMaterialReceive Status = "Material Receive"
	StatusManufacturing   Status = "Manufacturing"
	StatusStageInspection Status = "Stage-Inspection"
	StatusApproval        Status = "Approval"
	StatusDispatch        Status = "Dispatch"
	StatusGRN             Status = "GRN"
	StatusProjectClosed   Status = "Project Closed"
	StatusLost            Status = "Lost"
)

// DefaultStatus is assigned to new inquiries.
const DefaultStatus = StatusInputs

// Stage groups statuses by the opportunity tag they carry.
type Stage int

const (
	StageEarly Stage = iota
	StageOrder
	StageInvoice
	StageSpecial
)

func (s Stage) String() string {
	switch s {
	case StageEarly:
		return "early"
	case StageOrder:
		return "order"
	case StageInvoice:
		return "invoice"
	case StageSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// StatusInfo is everything derived from a status.
//
// Special statuses replace the opportunity id with their Tag entirely; the
// others prefix the create-id with it. Terminal statuses get no follow-up
// reminders.
type StatusInfo struct {
	Tag      string
	Stage    Stage
	Terminal bool
}

// Special reports whether Tag replaces the opportunity id.
func (i StatusInfo) Special() bool { return i.Stage == StageSpecial }

// statusOrder lists every status in workflow order.
var statusOrder = []Status{
	StatusEnquiry,
	StatusInputs,
	StatusInspection,
	StatusEnquiryHold,
	StatusPending,
	StatusQuotation,
	StatusNegotiation,
	StatusPOConfirm,
	StatusPOHold,
	StatusDesign,
	StatusDesignReview,
	StatusMaterialReceive,
	StatusManufacturing,
	StatusStageInspection,
	StatusApproval,
	StatusDispatch,
	StatusGRN,
	StatusProjectClosed,
	StatusLost,
}

var statusTable = map[Status]StatusInfo{
	StatusEnquiry:     {Tag: "e", Stage: StageEarly},
	StatusInputs:      {Tag: "e", Stage: StageEarly},
	StatusInspection:  {Tag: "e", Stage: StageEarly},
	StatusPending:     {Tag: "e", Stage: StageEarly},
	StatusQuotation:   {Tag: "e", Stage: StageEarly},
	StatusNegotiation: {Tag: "e", Stage: StageEarly},

	StatusEnquiryHold:   {Tag: "o", Stage: StageOrder},
	StatusPOConfirm:     {Tag: "o", Stage: StageOrder},
	StatusDesignReview:  {Tag: "o", Stage: StageOrder},
	StatusManufacturing: {Tag: "o", Stage: StageOrder},

	StatusStageInspection: {Tag: "i", Stage: StageInvoice},
	StatusDispatch:        {Tag: "i", Stage: StageInvoice},
	StatusGRN:             {Tag: "i", Stage: StageInvoice},
	StatusProjectClosed:   {Tag: "i", Stage: StageInvoice, Terminal: true},

	StatusLost:            {Tag: "LOST", Stage: StageSpecial, Terminal: true},
	StatusPOHold:          {Tag: "HOLD", Stage: StageSpecial},
	StatusDesign:          {Tag: "DESIGN", Stage: StageSpecial},
	StatusMaterialReceive: {Tag: "MATERIAL", Stage: StageSpecial},
	StatusApproval:        {Tag: "APPROVAL", Stage: StageSpecial},
}

// Statuses returns all statuses in workflow order.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// ParseStatus accepts only the exact status names.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusTable[st]; !ok {
		return "", invalid("status", s, "unknown workflow status")
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := statusTable[s]
	return ok
}

func (s Status) Info() (StatusInfo, error) {
	info, ok := statusTable[s]
	if !ok {
		return StatusInfo{}, invalid("status", string(s), "unknown workflow status")
	}
	return info, nil
}

// OpportunityID derives the opportunity id of an inquiry. An empty create-id
// yields an empty opportunity id.
func OpportunityID(status Status, createID string) (string, error) {
	info, err := status.Info()
	if err != nil {
		return "", err
	}
	if createID == "" {
		return "", nil
	}
	if info.Special() {
		return info.Tag, nil
	}
	return info.Tag + createID, nil
}
