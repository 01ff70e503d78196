package models

import "time"

// Column and json names are all-lowercase without separators; that is the
// contract the existing frontend speaks, so the gorm column tags pin it down
// instead of relying on the default snake_case naming.

// Client entity. Partner fields are optional and present as a group; the
// address block is optional as well.
type Client struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserEmail     string    `gorm:"column:useremail;not null;index" json:"useremail"`
	Name          string    `gorm:"not null" json:"name"`
	Email         string    `gorm:"not null" json:"email"`
	Profession    string    `gorm:"not null" json:"profession"`
	PhoneNumber   string    `gorm:"column:phonenumber;not null" json:"phonenumber"`
	Gender        string    `gorm:"not null" json:"gender"`
	BirthDate     time.Time `gorm:"column:birthdate;not null" json:"birthdate"`
	MaritalStatus string    `gorm:"column:maritalstatus;not null" json:"maritalstatus"`

	Address           string `json:"address,omitempty"`
	AddressNumber     string `gorm:"column:addressnumber" json:"addressnumber,omitempty"`
	AddressComplement string `gorm:"column:addresscomplement" json:"addresscomplement,omitempty"`

	PartnerName        string     `gorm:"column:partnername" json:"partnername,omitempty"`
	PartnerEmail       string     `gorm:"column:partneremail" json:"partneremail,omitempty"`
	PartnerPhoneNumber string     `gorm:"column:partnerphonenumber" json:"partnerphonenumber,omitempty"`
	PartnerGender      string     `gorm:"column:partnergender" json:"partnergender,omitempty"`
	PartnerProfession  string     `gorm:"column:partnerprofession" json:"partnerprofession,omitempty"`
	PartnerBirthDate   *time.Time `gorm:"column:partnerbirthdate" json:"partnerbirthdate,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Dependent is a person associated with a client (child, spouse, parent...)
// tracked for reporting purposes.
type Dependent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ClientID    uint       `gorm:"column:clientid;not null;index" json:"clientid"`
	Name        string     `gorm:"not null" json:"name"`
	Email       string     `json:"email,omitempty"`
	Gender      string     `gorm:"not null" json:"gender"`
	BirthDate   *time.Time `gorm:"column:birthdate" json:"birthdate,omitempty"`
	PhoneNumber string     `gorm:"column:phonenumber" json:"phonenumber,omitempty"`
	Type        string     `gorm:"not null" json:"type"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

// Age returns full years elapsed between birthdate and now.
func Age(birthdate, now time.Time) int {
	years := now.Year() - birthdate.Year()
	anniversary := birthdate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
