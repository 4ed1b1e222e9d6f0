package firestore

import (
	"context"

	"refugis/internal/domain/entity"
	"refugis/internal/domain/repository"
	"refugis/internal/errors"
	"refugis/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
)

type doubtRepository struct {
	client *firestore.Client
}

// NewDoubtRepository returns a DoubtRepository backed by 'doubts' and its 'answers' sub-collection.
func NewDoubtRepository(client *firestore.Client) repository.DoubtRepository {
	return &doubtRepository{client: client}
}

func (repo *doubtRepository) FindByShelter(ctx context.Context, shelterID string) ([]*entity.Doubt, error) {
	iter := repo.client.Collection(collectionDoubts).Where(model.FieldShelterID, "==", shelterID).Documents(ctx)

	return collectDocs(iter, (*model.DoubtDoc).ToDomain)
}

func (repo *doubtRepository) DeleteAnswers(ctx context.Context, doubtID string) error {
	refs, err := repo.client.Collection(collectionDoubts).Doc(doubtID).Collection(collectionAnswers).
		DocumentRefs(ctx).GetAll()
	if err != nil {
		return errors.Wrap(err, "failed to list answers")
	}

	return bulkDelete(ctx, repo.client, refs)
}

func (repo *doubtRepository) Delete(ctx context.Context, doubtID string) error {
	return deleteDoc(ctx, repo.client.Collection(collectionDoubts).Doc(doubtID))
}

type experienceRepository struct {
	client *firestore.Client
}

// NewExperienceRepository returns an ExperienceRepository backed by the 'experiences' collection.
func NewExperienceRepository(client *firestore.Client) repository.ExperienceRepository {
	return &experienceRepository{client: client}
}

func (repo *experienceRepository) FindByShelter(ctx context.Context, shelterID string) ([]*entity.Experience, error) {
	iter := repo.client.Collection(collectionExperiences).Where(model.FieldShelterID, "==", shelterID).Documents(ctx)

	return collectDocs(iter, (*model.ExperienceDoc).ToDomain)
}

func (repo *experienceRepository) Delete(ctx context.Context, experienceID string) error {
	return deleteDoc(ctx, repo.client.Collection(collectionExperiences).Doc(experienceID))
}

type renovationRepository struct {
	client *firestore.Client
}

// NewRenovationRepository returns a RenovationRepository backed by the 'renovations' collection.
func NewRenovationRepository(client *firestore.Client) repository.RenovationRepository {
	return &renovationRepository{client: client}
}

func (repo *renovationRepository) FindByShelter(ctx context.Context, shelterID string) ([]*entity.Renovation, error) {
	iter := repo.client.Collection(collectionRenovations).Where(model.FieldShelterID, "==", shelterID).Documents(ctx)

	return collectDocs(iter, (*model.RenovationDoc).ToDomain)
}

func (repo *renovationRepository) Delete(ctx context.Context, renovationID string) error {
	return deleteDoc(ctx, repo.client.Collection(collectionRenovations).Doc(renovationID))
}

func deleteDoc(ctx context.Context, ref *firestore.DocumentRef) error {
	if _, err := ref.Delete(ctx); err != nil && !isNotFound(err) {
		return errors.Wrapf(err, "failed to delete %s", ref.Path)
	}

	return nil
}

func bulkDelete(ctx context.Context, client *firestore.Client, refs []*firestore.DocumentRef) error {
	if len(refs) == 0 {
		return nil
	}

	writer := client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := writer.Delete(ref)
		if err != nil {
			writer.End()

			return errors.Wrap(err, "failed to queue delete")
		}
		jobs = append(jobs, job)
	}
	writer.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil && !isNotFound(err) {
			return errors.Wrap(err, "failed to delete document")
		}
	}

	return nil
}
