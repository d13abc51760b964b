package portal

import (
	"context"
	"strings"
	"sync"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/helper"
	"golang.org/x/sync/errgroup"
)

type KYCFields struct {
	NationalID string
	Name       string
	Address    string
	Phone      string
	IDCard     string // data URL
	Selfie     string // data URL
}

// KYCForm holds the identity-verification form for one session. Fields
// may be edited while attachments are still encoding.
type KYCForm struct {
	session *Session
	gate    *Gate
	encoder Encoder
	guard   submitGuard

	mu     sync.Mutex
	fields KYCFields
}

func NewKYCForm(session *Session, gate *Gate, encoder Encoder) *KYCForm {
	return &KYCForm{session: session, gate: gate, encoder: encoder}
}

func (f *KYCForm) Update(fn func(*KYCFields)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.fields)
}

func (f *KYCForm) Fields() KYCFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *KYCForm) Reset() {
	f.mu.Lock()
	f.fields = KYCFields{}
	f.mu.Unlock()
}

func (f *KYCForm) Submitting() bool {
	return f.guard.Submitting()
}

func (f *KYCForm) Validate() error {
	v := f.Fields()
	switch {
	case !helper.IsNationalID(strings.TrimSpace(v.NationalID)):
		return invalid("nik", "must be 16 digits")
	case strings.TrimSpace(v.Name) == "":
		return invalid("name", "is required")
	case strings.TrimSpace(v.Address) == "":
		return invalid("address", "is required")
	case len(strings.TrimSpace(v.Phone)) < 8:
		return invalid("phone", "must be at least 8 characters")
	case v.IDCard == "":
		return invalid("ktp_file", "is required")
	case v.Selfie == "":
		return invalid("selfie_file", "is required")
	}
	return nil
}

// AttachFiles encodes the ID photo and the selfie concurrently. Each
// payload is stored as soon as its encode finishes; either may be nil.
func (f *KYCForm) AttachFiles(ctx context.Context, idCard, selfie *File) error {
	g, ctx := errgroup.WithContext(ctx)

	attach := func(file *File, set func(*KYCFields, string)) {
		if file == nil {
			return
		}
		ch := f.encoder.EncodeAsync(ctx, *file, true)
		g.Go(func() error {
			res := <-ch
			if res.Err != nil {
				return res.Err
			}
			f.Update(func(v *KYCFields) { set(v, res.Payload) })
			return nil
		})
	}
	attach(idCard, func(v *KYCFields, p string) { v.IDCard = p })
	attach(selfie, func(v *KYCFields, p string) { v.Selfie = p })

	return g.Wait()
}

// Submit reads the member record, refuses while the latest submission is
// pending, and patches the record with the new submission appended. On
// success the form is cleared and the gate shows JUST_SUBMITTED.
func (f *KYCForm) Submit(ctx context.Context) (dto.MemberResponse, error) {
	done, err := f.guard.begin()
	if err != nil {
		return dto.MemberResponse{}, err
	}
	defer done()

	if err := f.Validate(); err != nil {
		return dto.MemberResponse{}, err
	}
	c, err := f.session.Client()
	if err != nil {
		return dto.MemberResponse{}, err
	}

	member, err := f.session.Self(ctx)
	if err != nil {
		return dto.MemberResponse{}, err
	}
	if DeriveState(member.LatestKYC(), false) == PendingReview {
		return dto.MemberResponse{}, ErrAlreadyPending
	}

	v := f.Fields()
	entries := make([]dto.KYCSubmissionInput, 0, len(member.KYCSubmissions)+1)
	for _, k := range member.KYCSubmissions {
		entries = append(entries, dto.KYCSubmissionInput{
			ID:         k.ID,
			NationalID: k.NationalID,
			Name:       k.Name,
			Address:    k.Address,
			Phone:      k.Phone,
			IDCardFile: k.IDCardFile,
			SelfieFile: k.SelfieFile,
		})
	}
	entries = append(entries, dto.KYCSubmissionInput{
		NationalID: strings.TrimSpace(v.NationalID),
		Name:       strings.TrimSpace(v.Name),
		Address:    strings.TrimSpace(v.Address),
		Phone:      strings.TrimSpace(v.Phone),
		IDCardFile: v.IDCard,
		SelfieFile: v.Selfie,
	})

	version := member.Version
	updated, err := c.Patch(ctx, member.ID, dto.MemberPatch{
		KYCSubmissions: entries,
		Version:        &version,
	})
	if err != nil {
		return dto.MemberResponse{}, err
	}

	f.Reset()
	if f.gate != nil {
		f.gate.MarkSubmitted()
	}
	return updated, nil
}
