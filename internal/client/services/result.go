package services

// Result is what every user-facing operation returns: a success flag and a
// message ready to show. Error is set only when Success is false.
type Result struct {
	Success bool
	Message string
	Error   string
}

func OK(msg string) Result {
	return Result{Success: true, Message: msg}
}

func Failed(msg string) Result {
	return Result{Error: msg}
}

// Messages produced by the services themselves.
const (
	MsgOTPRequired     = "Please enter the OTP sent to your email."
	MsgProfileUpdated  = "Your profile has been updated."
	MsgAccountDeleted  = "Your account has been successfully deleted."
	MsgGenerateFailed  = "Failed to generate quiz. Please try again."
	MsgNoCredits       = "You need AI credits to generate content. Please upgrade your plan."
	MsgMissingOptions  = "Please fill in all required fields before generating."
	MsgNoText          = "Please enter some text content to generate from."
	MsgFieldsRequired  = "Please fill in all the required fields first."
	MsgPasswordMatch   = "Passwords do not match. Please try again."
	MsgPasswordShort   = "Password must be at least 6 characters long."
	MsgNameEmpty       = "Name cannot be empty."
	MsgOnlyPDF         = "Only PDF files are allowed"
	MsgOnlyImages      = "Only JPG, PNG, and WebP images are allowed"
	MsgUnknownSource   = "Unknown source type."
	MsgHistoryNotFound = "No such history entry."
)
