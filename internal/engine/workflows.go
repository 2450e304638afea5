package engine

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pitcrew/internal/log"
	"pitcrew/internal/pubsub"
	"pitcrew/internal/registry"
	"pitcrew/internal/tracing"
	"pitcrew/internal/workspace"
)

// ReplaceResult reports the outcome of a Replace workflow. Warning is
// non-empty when the new artifact was uploaded but the old one could not be
// deleted; the upload is never rolled back.
type ReplaceResult struct {
	ArtifactID int64
	Warning    string
}

// BuildAndUpload compiles bin, prompts for a name and note, and uploads the
// build output. It returns the new artifact's identifier. A dismissed prompt
// returns ErrAborted before any remote call is made.
func (e *Engine) BuildAndUpload(ctx context.Context, bin workspace.Binary) (int64, error) {
	ctx, span := e.tracer.Start(ctx, tracing.SpanBuildAndUpload,
		trace.WithAttributes(attribute.String(tracing.AttrBinaryName, bin.Name)))
	defer span.End()

	content, err := e.buildOutput(ctx, span, bin)
	if err != nil {
		return 0, err
	}

	name, ok, err := e.prompter.InputName(ctx, bin.Name)
	if err != nil {
		return 0, fmt.Errorf("prompting for artifact name: %w", err)
	}
	if !ok {
		return 0, ErrAborted
	}
	if name == "" {
		name = bin.Name
	}

	note, ok, err := e.prompter.InputNote(ctx)
	if err != nil {
		return 0, fmt.Errorf("prompting for note: %w", err)
	}
	if !ok {
		return 0, ErrAborted
	}

	id, err := e.upload(ctx, span, name, note, content)
	if err != nil {
		return 0, err
	}

	e.finishWorkflow(ctx, "build-and-upload")
	return id, nil
}

// Replace uploads a fresh build under art's name, then deletes art. The
// operator picks which local binary to build. Deleting the old artifact is
// best effort: a failure there is reported as a warning, not an error, and
// the new upload stands.
func (e *Engine) Replace(ctx context.Context, art registry.Artifact) (ReplaceResult, error) {
	ctx, span := e.tracer.Start(ctx, tracing.SpanReplace,
		trace.WithAttributes(
			attribute.Int64(tracing.AttrArtifactID, art.ID),
			attribute.String(tracing.AttrArtifactName, art.Name)))
	defer span.End()

	if !art.OwnedByMe {
		return ReplaceResult{}, &PreconditionError{Reason: "artifact is not owned by you"}
	}

	bins := e.CurrentSnapshot().LocalBinaries
	if len(bins) == 0 {
		return ReplaceResult{}, &PreconditionError{Reason: "no local binaries to build"}
	}

	bin, ok, err := e.prompter.PickBinary(ctx, bins)
	if err != nil {
		return ReplaceResult{}, fmt.Errorf("picking binary: %w", err)
	}
	if !ok {
		return ReplaceResult{}, ErrAborted
	}
	span.SetAttributes(attribute.String(tracing.AttrBinaryName, bin.Name))

	content, err := e.buildOutput(ctx, span, bin)
	if err != nil {
		return ReplaceResult{}, err
	}

	note, ok, err := e.prompter.InputNote(ctx)
	if err != nil {
		return ReplaceResult{}, fmt.Errorf("prompting for note: %w", err)
	}
	if !ok {
		return ReplaceResult{}, ErrAborted
	}

	id, err := e.upload(ctx, span, art.Name, note, content)
	if err != nil {
		return ReplaceResult{}, err
	}

	result := ReplaceResult{ArtifactID: id}
	if err := e.registry.Delete(ctx, e.sessionToken(ctx), art.ID); err != nil {
		result.Warning = fmt.Sprintf("uploaded %q but could not delete the old artifact: %v", art.Name, err)
		log.Warn(log.CatEngine, result.Warning)
		span.AddEvent(tracing.EventCompensationFault)
	}

	e.finishWorkflow(ctx, "replace")
	return result, nil
}

// Delete removes art from the registry after an explicit confirmation. A
// declined confirmation returns ErrAborted with no remote call made.
func (e *Engine) Delete(ctx context.Context, art registry.Artifact) error {
	ctx, span := e.tracer.Start(ctx, tracing.SpanDelete,
		trace.WithAttributes(
			attribute.Int64(tracing.AttrArtifactID, art.ID),
			attribute.String(tracing.AttrArtifactName, art.Name)))
	defer span.End()

	if !art.OwnedByMe {
		return &PreconditionError{Reason: "artifact is not owned by you"}
	}

	ok, err := e.prompter.Confirm(ctx, fmt.Sprintf("Delete %q from the registry?", art.Name))
	if err != nil {
		return fmt.Errorf("confirming delete: %w", err)
	}
	if !ok {
		return ErrAborted
	}

	if err := e.registry.Delete(ctx, e.sessionToken(ctx), art.ID); err != nil {
		return fmt.Errorf("deleting artifact %d: %w", art.ID, err)
	}

	e.finishWorkflow(ctx, "delete")
	return nil
}

// ToggleVisibility flips art between public and private.
func (e *Engine) ToggleVisibility(ctx context.Context, art registry.Artifact) error {
	ctx, span := e.tracer.Start(ctx, tracing.SpanToggleVisibility,
		trace.WithAttributes(
			attribute.Int64(tracing.AttrArtifactID, art.ID),
			attribute.String(tracing.AttrArtifactName, art.Name)))
	defer span.End()

	if !art.OwnedByMe {
		return &PreconditionError{Reason: "artifact is not owned by you"}
	}

	if err := e.registry.SetVisibility(ctx, e.sessionToken(ctx), art.ID, !art.IsPublic); err != nil {
		return fmt.Errorf("setting visibility for artifact %d: %w", art.ID, err)
	}

	e.finishWorkflow(ctx, "toggle-visibility")
	return nil
}

// RevealBuildOutput surfaces bin's compiled output in the host file manager.
// It never builds; an absent output is a precondition failure.
func (e *Engine) RevealBuildOutput(bin workspace.Binary) error {
	path := e.builder.OutputPath(bin.Root, bin.Name)
	if _, err := os.Stat(path); err != nil {
		return &PreconditionError{Reason: fmt.Sprintf("%q has not been built yet", bin.Name)}
	}
	if err := e.revealer.Reveal(path); err != nil {
		return fmt.Errorf("revealing %s: %w", path, err)
	}
	return nil
}

// buildOutput compiles bin and reads the resulting payload.
func (e *Engine) buildOutput(ctx context.Context, span trace.Span, bin workspace.Binary) ([]byte, error) {
	if err := e.builder.Build(ctx, bin.Root, bin.Name); err != nil {
		return nil, fmt.Errorf("building %q: %w", bin.Name, err)
	}
	span.AddEvent(tracing.EventBuildFinished)

	path := e.builder.OutputPath(bin.Root, bin.Name)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("build output missing at %s: %w", path, err)
	}
	return content, nil
}

func (e *Engine) upload(ctx context.Context, span trace.Span, name, note string, content []byte) (int64, error) {
	resp, err := e.registry.Upload(ctx, e.sessionToken(ctx), registry.UploadRequest{
		Name:    name,
		Note:    note,
		Target:  e.target,
		Content: content,
	})
	if err != nil {
		return 0, fmt.Errorf("uploading %q: %w", name, err)
	}
	span.AddEvent(tracing.EventUploadFinished)
	return resp.ArtifactID, nil
}

// finishWorkflow publishes the completion notice and triggers the single
// refresh every mutating workflow ends with.
func (e *Engine) finishWorkflow(ctx context.Context, name string) {
	log.Info(log.CatEngine, "workflow complete: "+name)
	e.Refresh(ctx)
	e.broker.Publish(pubsub.WorkflowEvent, ChangeNotice{
		Status:   e.CurrentStatus(),
		Workflow: name,
	})
}
