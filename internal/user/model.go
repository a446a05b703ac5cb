package user

import "time"

// KYC document types accepted by the onboarding flow.
const (
	DocTypePAN     = "PAN Card"
	DocTypeAadhaar = "Aadhaar Card"
)

// Client-side routes the API tells the frontend to navigate to next.
const (
	RedirectLogin          = "/login"
	RedirectProfileSetup   = "/profile-setup"
	RedirectKYC            = "/kyc"
	RedirectDashboard      = "/dashboard"
	RedirectAdminDashboard = "/admin/dashboard"
)

// User is the persisted account record. OTP and OTPExpiry hold transient
// verification state and are always set or cleared together.
type User struct {
	ID             string
	PhoneNumber    string
	Email          string
	ReferralCode   string
	IsProfileSetup bool
	IsKycDone      bool
	IsAdmin        bool
	Profile        *Profile
	KYCDocuments   []KYCDocument
	OTP            string
	OTPExpiry      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile is the sub-record written at profile-setup time.
type Profile struct {
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
}

// KYCDocument is an uploaded identity document reference. The list on the
// user is append-only.
type KYCDocument struct {
	DocType    string    `json:"docType"`
	FileURL    string    `json:"fileUrl"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// View is the sanitized representation returned to clients. OTP state never
// leaves the server through it.
type View struct {
	ID             string        `json:"id"`
	PhoneNumber    string        `json:"phoneNumber"`
	Email          string        `json:"email,omitempty"`
	IsProfileSetup bool          `json:"isProfileSetup"`
	IsKycDone      bool          `json:"isKycDone"`
	IsAdmin        bool          `json:"isAdmin"`
	Profile        *Profile      `json:"profile,omitempty"`
	KYCDocuments   []KYCDocument `json:"kycDocuments,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// View converts the user to its client-facing shape.
func (u *User) View() View {
	return View{
		ID:             u.ID,
		PhoneNumber:    u.PhoneNumber,
		Email:          u.Email,
		IsProfileSetup: u.IsProfileSetup,
		IsKycDone:      u.IsKycDone,
		IsAdmin:        u.IsAdmin,
		Profile:        u.Profile,
		KYCDocuments:   u.KYCDocuments,
		CreatedAt:      u.CreatedAt,
	}
}

// NextOnboardingRedirect computes the screen an authenticated user should see
// next. finalTarget is where a fully onboarded user lands, which differs
// between the signup and login flows.
func (u *User) NextOnboardingRedirect(finalTarget string) string {
	switch {
	case !u.IsProfileSetup:
		return RedirectProfileSetup
	case !u.IsKycDone:
		return RedirectKYC
	default:
		return finalTarget
	}
}
