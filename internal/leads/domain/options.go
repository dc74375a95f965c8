package domain

// OptionCatalog holds the closed option sets the task form offers. Keeping
// them in one place lets validation, classification, and the HTTP layer share
// a single source of truth.
type OptionCatalog struct {
	callStatuses             map[string]struct{}
	connectStatuses          map[string]struct{}
	shortlistingFinalStatus  map[string]struct{}
	trackingStatuses         map[string]struct{}
	visaStatuses             map[string]struct{}
	applicationStatuses      map[string]struct{}
	offerLetterStatuses      map[string]struct{}
	applicationProcessValues map[string]struct{}
}

// DefaultOptionCatalog returns the production option sets.
func DefaultOptionCatalog() *OptionCatalog {
	return &OptionCatalog{
		callStatuses: toSet(
			CallStatusDone, CallStatusCallBack, CallStatusCallRejected,
			CallStatusSwitchOff, CallStatusNotReachable, CallStatusNotAnswered,
			CallStatusCallBusy, CallStatusWrongNumber,
		),
		connectStatuses: toSet(
			ConnectInterested, ConnectNotInterested, ConnectPlanningLater,
			ConnectYetToDecide, ConnectIrrelevant, "DNP", ConnectCallBack,
			"Call Rejected", "Other Preferred Language", ConnectCasualFollowUp,
			ConnectSessionScheduling,
		),
		shortlistingFinalStatus: toSet(ShortlistingSentToStudents, ShortlistingYetToSend),
		trackingStatuses: toSet(
			TrackingCredentialsLogging, TrackingApplicationStatus,
			TrackingOfferLetterStatus, TrackingVisaTracking,
		),
		visaStatuses: toSet(
			VisaStatusApplied, VisaStatusInProcess, VisaStatusApproved, VisaStatusRejected,
		),
		applicationStatuses: toSet(
			"Docs Pending", "In Progress", "Application submitted to KC",
			"Application submitted to university", "Awaiting decision",
			"Accepted", "Rejected",
		),
		offerLetterStatuses: toSet("Conditional", "Unconditional"),
		applicationProcessValues: toSet(
			"New Application Initiated at KC", "Add-on Application Initiated at KC",
		),
	}
}

func (c *OptionCatalog) IsCallStatus(v string) bool    { return contains(c.callStatuses, v) }
func (c *OptionCatalog) IsConnectStatus(v string) bool { return contains(c.connectStatuses, v) }
func (c *OptionCatalog) IsShortlistingFinalStatus(v string) bool {
	return contains(c.shortlistingFinalStatus, v)
}
func (c *OptionCatalog) IsTrackingStatus(v string) bool { return contains(c.trackingStatuses, v) }
func (c *OptionCatalog) IsVisaStatus(v string) bool     { return contains(c.visaStatuses, v) }
func (c *OptionCatalog) IsApplicationStatus(v string) bool {
	return contains(c.applicationStatuses, v)
}
func (c *OptionCatalog) IsOfferLetterStatus(v string) bool {
	return contains(c.offerLetterStatuses, v)
}
func (c *OptionCatalog) IsApplicationProcess(v string) bool {
	return contains(c.applicationProcessValues, v)
}

func toSet(values ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func contains(s map[string]struct{}, v string) bool {
	_, ok := s[v]
	return ok
}
