package streamyard

// WebinarInfo is the public webinar record. VODURL is nil when the
// recording is not available to this session.
type WebinarInfo struct {
	ID                           string            `json:"id"`
	Title                        string            `json:"title"`
	VODURL                       *string           `json:"vodUrl"`
	VODPosterURL                 string            `json:"vodPosterUrl"`
	IsRegistrationEnabled        bool              `json:"isRegistrationEnabled"`
	IsVodMediaDeleted            bool              `json:"isVodMediaDeleted"`
	RegistrationFieldDefinitions []FieldDefinition `json:"registrationFieldDefinitions"`
}

type FieldDefinition struct {
	ID     string `json:"id"`
	Fields struct {
		Data []Field `json:"data"`
	} `json:"fields"`
}

type Field struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	IsRequired bool   `json:"isRequired"`
}

// Registrant is who we sign up as.
type Registrant struct {
	Email     string
	FirstName string
	LastName  string
}

type registrationFields struct {
	DefinitionID string            `json:"definitionId"`
	Values       map[string]string `json:"values"`
}

type registrationRequest struct {
	Email     string             `json:"email"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Fields    registrationFields `json:"fields"`
	TimeZone  string             `json:"timeZone"`
}
