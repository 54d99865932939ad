package invoicesync

import (
	"context"
	"fmt"

	"crmsync/internal/fakturoid"
	"crmsync/pkg/models"
)

// ResolveOrCreateContact returns the Fakturoid subject id of project. It looks
// the subject up by billing CIN, then by project e-mail, and creates it when
// neither search matches.
func (s *Service) ResolveOrCreateContact(ctx context.Context, project *models.Project) (int64, error) {
	const op = "ResolveOrCreateContact"

	if addr := project.BillingAddress; addr != nil && addr.CIN != "" {
		id, err := s.FindContactID(ctx, addr.CIN)
		if err != nil {
			return 0, NewSyncError(op, err, "search by CIN")
		}
		if id != 0 {
			s.log.Debug().Int64("project_id", project.ID).Int64("subject_id", id).Msg("Subject found by CIN")
			return id, nil
		}
	}

	if project.Email != "" {
		id, err := s.FindContactID(ctx, project.Email)
		if err != nil {
			return 0, NewSyncError(op, err, "search by e-mail")
		}
		if id != 0 {
			s.log.Debug().Int64("project_id", project.ID).Int64("subject_id", id).Msg("Subject found by e-mail")
			return id, nil
		}
	}

	id, err := s.CreateContact(ctx, project)
	if err != nil {
		return 0, NewSyncError(op, err, "create subject")
	}
	return id, nil
}

// FindContactID returns the id of the first subject matching query, or 0.
func (s *Service) FindContactID(ctx context.Context, query string) (int64, error) {
	subjects, err := s.api.SearchSubjects(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(subjects) == 0 {
		return 0, nil
	}
	return subjects[0].ID, nil
}

// ContactPayload builds the subject fields of project. The admin user's e-mail
// is added as a copy recipient when it differs from the project e-mail.
func (s *Service) ContactPayload(ctx context.Context, project *models.Project) (fakturoid.Payload, error) {
	p := fakturoid.Payload{
		"name": clientName(project),
	}
	if addr := project.BillingAddress; addr != nil {
		putString(p, "street", addr.Street)
		putString(p, "city", addr.City)
		putString(p, "zip", addr.Zip)
		putString(p, "country", addr.Country)
		putString(p, "registration_no", addr.CIN)
		putString(p, "vat_no", taxID(addr))
	}
	putString(p, "email", project.BillingEmail())
	putString(p, "phone", project.Phone)
	putString(p, "web", project.DefaultURL)

	user, err := s.store.FindAdminUserByProjectID(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("load admin user: %w", err)
	}
	if user != nil && user.Email != "" && user.Email != project.Email {
		p["email_copy"] = user.Email
	}

	return p, nil
}

// CreateContact creates a Fakturoid subject for project and returns its id.
func (s *Service) CreateContact(ctx context.Context, project *models.Project) (int64, error) {
	payload, err := s.ContactPayload(ctx, project)
	if err != nil {
		return 0, err
	}

	subject, err := s.api.CreateSubject(ctx, payload)
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Int64("project_id", project.ID).
		Int64("subject_id", subject.ID).
		Msg("Fakturoid subject created")

	return subject.ID, nil
}
