package clinicapi

import "time"

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the backend-issued bearer token.
type AuthResponse struct {
	Token string `json:"token"`
}

// ChatMessage is one message as the backend serves it.
type ChatMessage struct {
	ID           *int      `json:"id,omitempty"`
	SenderID     int       `json:"senderId"`
	SenderName   string    `json:"senderName"`
	ReceiverID   int       `json:"receiverId"`
	ReceiverName string    `json:"receiverName"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	IsRead       bool      `json:"isRead"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalPatients        int `json:"totalPatients"`
	TotalMedecins        int `json:"totalMedecins"`
	TotalRendezVous      int `json:"totalRendezVous"`
	RendezVousAujourdhui int `json:"rendezVousAujourdhui"`
	RendezVousEnAttente  int `json:"rendezVousEnAttente"`
}

// RendezVous is an appointment summary row.
type RendezVous struct {
	ID          int       `json:"id"`
	PatientName string    `json:"patientName"`
	MedecinName string    `json:"medecinName"`
	Date        time.Time `json:"date"`
	Statut      string    `json:"statut"`
}

// Revenue is the invoice revenue figure for a year or month.
type Revenue struct {
	Total float64 `json:"total"`
}
