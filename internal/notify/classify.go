package notify

// Backend notification categories carried in the objMessage field.
const (
	CategoryNewRdv       = "NEW_RDV"
	CategoryRdvCancelled = "RDV_CANCELLED"
	CategoryRdvReminder  = "RDV_REMINDER"
	CategoryRdvConfirmed = "RDV_CONFIRMED"
	CategoryRdvCompleted = "RDV_COMPLETED"
)

// Classify maps a backend category to the kind and title shown to the
// user. Unknown categories surface as a generic info notification.
func Classify(category string) (Kind, string) {
	switch category {
	case CategoryNewRdv:
		return KindSuccess, "Nouveau RDV"
	case CategoryRdvCancelled:
		return KindWarning, "RDV Annulé"
	case CategoryRdvReminder:
		return KindInfo, "Rappel RDV"
	case CategoryRdvConfirmed:
		return KindSuccess, "RDV Confirmé"
	case CategoryRdvCompleted:
		return KindInfo, "RDV Terminé"
	default:
		return KindInfo, "Notification"
	}
}
