package history

import (
	"context"
	"encoding/json"
	"os"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// ExportJSONL writes every entry of repo to dest, one JSON object per line, oldest first.
func ExportJSONL(ctx context.Context, repo ports.HistoryRepository, dest string) (int, error) {
	entries, err := repo.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	file, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}
