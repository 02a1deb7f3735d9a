package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"arcade-backend/internal/config"
	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"
)

type SnapshotService struct {
	Snapshots *repositories.SnapshotRepository
	Items     *repositories.StockItemRepository
	Machines  *repositories.MachineRepository
	Cfg       *config.Config
}

func NewSnapshotService(
	snapshots *repositories.SnapshotRepository,
	items *repositories.StockItemRepository,
	machines *repositories.MachineRepository,
	cfg *config.Config,
) *SnapshotService {
	return &SnapshotService{Snapshots: snapshots, Items: items, Machines: machines, Cfg: cfg}
}

// CreateSnapshot captures the current state of a stock item or machine as a
// new version. The off-site mirror upload is best effort and never fails the
// snapshot itself.
func (s *SnapshotService) CreateSnapshot(ctx context.Context, req *models.CreateSnapshotRequest, userID string) (*models.Snapshot, error) {
	if req.EntityID == "" {
		return nil, errors.New("entity_id is required")
	}

	var entityName string
	var data map[string]interface{}

	switch req.EntityType {
	case models.SnapshotStockItem:
		item, err := s.Items.Get(ctx, req.EntityID)
		if err != nil {
			return nil, err
		}
		entityName = item.Name
		data = entityToMap(item)
	case models.SnapshotMachine:
		machine, err := s.Machines.Get(ctx, req.EntityID)
		if err != nil {
			return nil, err
		}
		entityName = machine.Name
		data = entityToMap(machine)
	default:
		return nil, errors.New("entity_type must be stockItem or machine")
	}
	if data == nil {
		return nil, errors.New("failed to serialize entity")
	}

	snapshot := &models.Snapshot{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		EntityName: entityName,
		Label:      req.Label,
		Data:       data,
		CreatedBy:  userID,
	}
	if err := s.Snapshots.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	if s.Cfg.Snapshots.MirrorEnabled {
		go s.mirrorSnapshot(snapshot)
	}
	return snapshot, nil
}

func (s *SnapshotService) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	return s.Snapshots.Get(ctx, id)
}

func (s *SnapshotService) ListSnapshots(ctx context.Context, entityType, entityID string) ([]models.Snapshot, error) {
	if entityType != models.SnapshotStockItem && entityType != models.SnapshotMachine {
		return nil, errors.New("entity_type must be stockItem or machine")
	}
	return s.Snapshots.ListByEntity(ctx, entityType, entityID)
}

func (s *SnapshotService) DeleteSnapshot(ctx context.Context, id string) error {
	return s.Snapshots.Delete(ctx, id)
}

// Diff compares two versions of the same entity field by field. Nested
// values are compared by their JSON form.
func (s *SnapshotService) Diff(ctx context.Context, entityType, entityID string, fromVersion, toVersion int) ([]models.SnapshotDiff, error) {
	from, err := s.Snapshots.GetVersion(ctx, entityType, entityID, fromVersion)
	if err != nil {
		return nil, err
	}
	to, err := s.Snapshots.GetVersion(ctx, entityType, entityID, toVersion)
	if err != nil {
		return nil, err
	}
	return diffSnapshots(from.Data, to.Data), nil
}

func diffSnapshots(from, to map[string]interface{}) []models.SnapshotDiff {
	fields := make(map[string]struct{}, len(from)+len(to))
	for k := range from {
		fields[k] = struct{}{}
	}
	for k := range to {
		fields[k] = struct{}{}
	}

	var diffs []models.SnapshotDiff
	for field := range fields {
		oldVal, newVal := from[field], to[field]
		if reflect.DeepEqual(oldVal, newVal) {
			continue
		}
		diffs = append(diffs, models.SnapshotDiff{Field: field, OldValue: oldVal, NewValue: newVal})
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Field < diffs[j].Field })
	return diffs
}

// mirrorSnapshot uploads a snapshot to the configured S3-compatible bucket
func (s *SnapshotService) mirrorSnapshot(snapshot *models.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sc := s.Cfg.Snapshots
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			sc.AccessKey,
			sc.SecretKey,
			"",
		)),
		awsconfig.WithRegion(sc.Region),
	)
	if err != nil {
		log.Printf("[Snapshot] Failed to configure mirror client: %v", err)
		return
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
		}
	})

	body, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("[Snapshot] Failed to serialize snapshot %s: %v", snapshot.ID, err)
		return
	}

	key := fmt.Sprintf("snapshots/%s/%s/v%d.json", snapshot.EntityType, snapshot.EntityID, snapshot.Version)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(sc.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.Printf("[Snapshot] Failed to mirror snapshot %s: %v", snapshot.ID, err)
		return
	}
	log.Printf("[Snapshot] Mirrored %s version %d to %s", snapshot.EntityID, snapshot.Version, key)
}

// entityToMap flattens an entity to its JSON field map
func entityToMap(v interface{}) map[string]interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
