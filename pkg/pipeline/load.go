package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/matzehuels/cvtopo/pkg/cache"
	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	"github.com/matzehuels/cvtopo/pkg/inventory"
	"github.com/matzehuels/cvtopo/pkg/observability"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

// Load reads and parses the inventory named by opts. It returns the parsed
// mapping together with its content hash.
func Load(ctx context.Context, opts Options) (inventory.Mapping, string, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLoadStart(ctx, opts.source())

	inv, hash, err := load(opts)
	hooks.OnLoadComplete(ctx, opts.source(), inv.Len(), time.Since(start), err)
	if err != nil {
		return nil, "", err
	}
	return inv, hash, nil
}

func load(opts Options) (inventory.Mapping, string, error) {
	data := opts.Inventory
	if opts.InventoryPath != "" {
		var err error
		data, err = os.ReadFile(opts.InventoryPath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", cverrors.Wrap(cverrors.ErrCodeFileNotFound, err, "inventory %s not found", opts.InventoryPath)
		}
		if err != nil {
			return nil, "", cverrors.Wrap(cverrors.ErrCodeInvalidPath, err, "read inventory %s", opts.InventoryPath)
		}
	}

	inv, err := inventory.Parse(data)
	if err != nil {
		return nil, "", cverrors.Wrap(cverrors.ErrCodeInvalidInventory, err, "invalid inventory")
	}
	return inv, cache.Hash(data), nil
}

// classifyError attaches an error code to the sentinel errors of the
// topology package. Errors that already carry a code are returned as is.
func classifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case cverrors.GetCode(err) != "":
		return err
	case errors.Is(err, topology.ErrContainerNotFound):
		return cverrors.Wrap(cverrors.ErrCodeContainerNotFound, err, "container not found")
	case errors.Is(err, topology.ErrDuplicateContainer):
		return cverrors.Wrap(cverrors.ErrCodeDuplicateContainer, err, "duplicate container name")
	case errors.Is(err, topology.ErrEmptyName):
		return cverrors.Wrap(cverrors.ErrCodeInvalidInventory, err, "invalid inventory")
	default:
		return cverrors.Wrap(cverrors.ErrCodeInternal, err, "extraction failed")
	}
}

// Warnings describes the skipped entries and name collisions of a tree.
func Warnings(t *topology.Tree) []string {
	var out []string
	for _, issue := range t.Issues() {
		out = append(out, issue.String())
	}
	for _, d := range t.Duplicates() {
		n, _ := t.Node(d.Current)
		at := d.Name
		if n.Group != nil {
			at = n.Group.Path
		}
		out = append(out, "duplicate container "+d.Name+": using the declaration at "+at)
	}
	return out
}
