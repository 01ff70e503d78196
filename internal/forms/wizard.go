// Package forms models the four-step client creation wizard as an explicit
// draft builder: every field lives in one Draft value, step validation is a
// pure function over (step, draft), and advancing is blocked while the current
// step has violations. The renderer stays entirely out of this package.
package forms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecastro/clientdesk/internal/models"
	"github.com/ecastro/clientdesk/internal/validation"

	"github.com/google/uuid"
)

const (
	StepBasicInfo  = 1
	StepAddress    = 2
	StepPartner    = 3
	StepDependents = 4
	TotalSteps     = 4
)

// NoticeTTL is how long a submission failure notice stays visible before it
// auto-dismisses.
const NoticeTTL = 5 * time.Second

const dateLayout = "2006-01-02"

var (
	ErrDraftInvalid = errors.New("draft has validation errors")
	ErrCreateFailed = errors.New("client creation failed")
)

// DependentDraft is an entry of the dependents step. ID is a local draft
// identifier, not a persisted one.
type DependentDraft struct {
	ID          string
	Name        string
	Email       string
	Gender      string
	BirthDate   string
	PhoneNumber string
	Type        string
}

// Draft holds every wizard field. Dates are kept as the YYYY-MM-DD strings the
// inputs produce and only parsed at submission.
type Draft struct {
	Name          string
	Email         string
	PhoneNumber   string
	Gender        string
	Profession    string
	BirthDate     string
	MaritalStatus string

	Address           string
	AddressNumber     string
	AddressComplement string

	HasPartner         bool
	PartnerName        string
	PartnerEmail       string
	PartnerPhoneNumber string
	PartnerGender      string
	PartnerProfession  string
	PartnerBirthDate   string

	Dependents []DependentDraft
}

func (d Draft) clone() Draft {
	out := d
	out.Dependents = append([]DependentDraft(nil), d.Dependents...)
	return out
}

// ValidateStep is pure: it inspects the draft for one step and returns the
// field violations, keyed by the form field names. Messages are the ones the
// interface shows.
func ValidateStep(step int, d Draft) validation.Violations {
	v := make(validation.Violations)
	switch step {
	case StepBasicInfo:
		if d.Name == "" {
			v["name"] = "Nome é obrigatório"
		}
		if d.Email == "" {
			v["email"] = "Email é obrigatório"
		} else if !validation.IsEmail(d.Email) {
			v["email"] = "Email inválido"
		}
		if d.PhoneNumber == "" {
			v["phoneNumber"] = "Telefone é obrigatório"
		}
		if d.Gender == "" {
			v["gender"] = "Gênero é obrigatório"
		}
		if d.Profession == "" {
			v["profession"] = "Profissão é obrigatória"
		}
		if d.BirthDate == "" {
			v["birthdate"] = "Data de nascimento é obrigatória"
		}
		if d.MaritalStatus == "" {
			v["maritalStatus"] = "Estado civil é obrigatório"
		}
	case StepAddress:
		// every address field is optional
	case StepPartner:
		if !d.HasPartner {
			return v
		}
		if d.PartnerName == "" {
			v["partnerName"] = "Nome do parceiro é obrigatório"
		}
		if d.PartnerEmail == "" {
			v["partnerEmail"] = "Email do parceiro é obrigatório"
		} else if !validation.IsEmail(d.PartnerEmail) {
			v["partnerEmail"] = "Email do parceiro inválido"
		}
		if d.PartnerPhoneNumber == "" {
			v["partnerPhoneNumber"] = "Telefone do parceiro é obrigatório"
		}
		if d.PartnerGender == "" {
			v["partnerGender"] = "Gênero do parceiro é obrigatório"
		}
		if d.PartnerProfession == "" {
			v["partnerProfession"] = "Profissão do parceiro é obrigatória"
		}
		if d.PartnerBirthDate == "" {
			v["partnerBirthdate"] = "Data de nascimento do parceiro é obrigatória"
		}
	case StepDependents:
		for i, dep := range d.Dependents {
			if dep.Name == "" {
				v[fmt.Sprintf("dependent_%d_name", i)] = fmt.Sprintf("Nome do dependente %d é obrigatório", i+1)
			}
			if dep.Gender == "" {
				v[fmt.Sprintf("dependent_%d_gender", i)] = fmt.Sprintf("Gênero do dependente %d é obrigatório", i+1)
			}
			if dep.Type == "" {
				v[fmt.Sprintf("dependent_%d_type", i)] = fmt.Sprintf("Tipo do dependente %d é obrigatório", i+1)
			}
			if dep.Email != "" && !validation.IsEmail(dep.Email) {
				v[fmt.Sprintf("dependent_%d_email", i)] = fmt.Sprintf("Email do dependente %d é inválido", i+1)
			}
		}
	}
	return v
}

// ValidateDependent applies the standalone add-dependent form rules.
func ValidateDependent(d DependentDraft, now time.Time) validation.Violations {
	v := make(validation.Violations)
	if d.Name == "" {
		v["name"] = "Nome é obrigatório"
	}
	if d.Gender == "" {
		v["gender"] = "Gênero é obrigatório"
	}
	if d.Type == "" {
		v["type"] = "Tipo de dependente é obrigatório"
	}
	if d.Email != "" && !validation.IsEmail(d.Email) {
		v["email"] = "Email deve ter um formato válido"
	}
	if d.PhoneNumber != "" && !validation.PhoneDigits(d.PhoneNumber) {
		v["phonenumber"] = "Telefone deve ter 10 ou 11 dígitos"
	}
	if d.BirthDate != "" {
		if bd, err := time.Parse(dateLayout, d.BirthDate); err != nil || bd.After(now) {
			v["birthdate"] = "Data de nascimento não pode ser no futuro"
		}
	}
	return v
}

// Notice is a transient, auto-dismissing submission failure message.
type Notice struct {
	Message   string
	expiresAt time.Time
}

// API is the slice of the gateway the wizard submits through.
type API interface {
	PostClient(ctx context.Context, c models.Client) (*models.Client, error)
	PostDependent(ctx context.Context, d models.Dependent) (*models.Dependent, error)
}

// Builder drives the wizard. The working draft is internal; Snapshot returns
// an independent copy, so callers can never mutate wizard state behind its back.
type Builder struct {
	step   int
	draft  Draft
	errors validation.Violations
	notice *Notice
	now    func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{step: StepBasicInfo, errors: make(validation.Violations), now: time.Now}
}

func (b *Builder) Step() int { return b.step }

// Snapshot returns a deep copy of the current draft.
func (b *Builder) Snapshot() Draft { return b.draft.clone() }

// Errors returns the violations from the last validation attempt.
func (b *Builder) Errors() validation.Violations { return b.errors }

// Edit applies a mutation to the working draft.
func (b *Builder) Edit(fn func(*Draft)) { fn(&b.draft) }

// Next validates the current step and advances when it is clean. It reports
// whether the step changed.
func (b *Builder) Next() bool {
	b.errors = ValidateStep(b.step, b.draft)
	if !b.errors.Empty() || b.step >= TotalSteps {
		return false
	}
	b.step++
	return true
}

func (b *Builder) Back() {
	if b.step > StepBasicInfo {
		b.step--
	}
}

// AddDependent validates and appends a dependent draft, assigning it a local
// draft id. On violation nothing is added.
func (b *Builder) AddDependent(d DependentDraft) (DependentDraft, validation.Violations) {
	v := ValidateDependent(d, b.now())
	if !v.Empty() {
		return DependentDraft{}, v
	}
	d.ID = uuid.NewString()
	b.draft.Dependents = append(b.draft.Dependents, d)
	return d, v
}

func (b *Builder) RemoveDependent(id string) {
	kept := b.draft.Dependents[:0]
	for _, d := range b.draft.Dependents {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	b.draft.Dependents = kept
}

// Notice returns the active failure notice, if it has not expired yet.
func (b *Builder) Notice() (string, bool) {
	if b.notice == nil || b.now().After(b.notice.expiresAt) {
		return "", false
	}
	return b.notice.Message, true
}

// Submit performs the final flow: create the client, then create each drafted
// dependent in order, tagged with the new client id. If client creation fails
// (no id returned) the flow aborts, a transient notice is raised and the draft
// is discarded without attempting dependents. Dependent creation is strictly
// sequential, so a failure leaves a deterministic prefix created.
func (b *Builder) Submit(ctx context.Context, api API) (*models.Client, error) {
	b.errors = ValidateStep(b.step, b.draft)
	if !b.errors.Empty() {
		return nil, ErrDraftInvalid
	}

	client, err := b.draft.client()
	if err != nil {
		b.errors["birthdate"] = "Data inválida"
		return nil, ErrDraftInvalid
	}

	created, err := api.PostClient(ctx, client)
	if err != nil || created == nil || created.ID == 0 {
		b.notice = &Notice{
			Message:   "Erro ao criar cliente. Tente novamente.",
			expiresAt: b.now().Add(NoticeTTL),
		}
		b.reset()
		if err == nil {
			err = ErrCreateFailed
		}
		return nil, err
	}

	for _, draft := range b.draft.Dependents {
		dep, derr := draft.dependent(created.ID)
		if derr != nil {
			continue
		}
		if _, derr = api.PostDependent(ctx, dep); derr != nil {
			b.reset()
			return created, derr
		}
	}

	b.reset()
	return created, nil
}

func (b *Builder) reset() {
	b.step = StepBasicInfo
	b.draft = Draft{}
	b.errors = make(validation.Violations)
}

// client converts the draft into the payload the backend expects. Partner
// fields only travel when the partner toggle is on.
func (d Draft) client() (models.Client, error) {
	birth, err := time.Parse(dateLayout, d.BirthDate)
	if err != nil {
		return models.Client{}, err
	}
	c := models.Client{
		Name:              d.Name,
		Email:             d.Email,
		PhoneNumber:       d.PhoneNumber,
		Gender:            d.Gender,
		Profession:        d.Profession,
		BirthDate:         birth,
		MaritalStatus:     d.MaritalStatus,
		Address:           d.Address,
		AddressNumber:     d.AddressNumber,
		AddressComplement: d.AddressComplement,
	}
	if d.HasPartner {
		c.PartnerName = d.PartnerName
		c.PartnerEmail = d.PartnerEmail
		c.PartnerPhoneNumber = d.PartnerPhoneNumber
		c.PartnerGender = d.PartnerGender
		c.PartnerProfession = d.PartnerProfession
		if d.PartnerBirthDate != "" {
			if pb, err := time.Parse(dateLayout, d.PartnerBirthDate); err == nil {
				c.PartnerBirthDate = &pb
			}
		}
	}
	return c, nil
}

func (d DependentDraft) dependent(clientID uint) (models.Dependent, error) {
	dep := models.Dependent{
		ClientID:    clientID,
		Name:        d.Name,
		Email:       d.Email,
		Gender:      d.Gender,
		PhoneNumber: d.PhoneNumber,
		Type:        d.Type,
	}
	if d.BirthDate != "" {
		bd, err := time.Parse(dateLayout, d.BirthDate)
		if err != nil {
			return dep, err
		}
		dep.BirthDate = &bd
	}
	return dep, nil
}
