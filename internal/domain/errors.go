package domain

import "errors"

// ErrVODNotFound indicates the webinar has no VOD URL, even after registering
var ErrVODNotFound = errors.New("VOD not found")

// ErrVODMediaDeleted indicates the recording was removed by the organizer
var ErrVODMediaDeleted = errors.New("VOD media has been deleted")

// ErrNoWebinarURL indicates a webinar module without a webinar_url entry
var ErrNoWebinarURL = errors.New("no webinar URL")

// ErrNoRegistrationFields indicates registration is enabled but no form is defined
var ErrNoRegistrationFields = errors.New("webinar has no registration field definitions")
