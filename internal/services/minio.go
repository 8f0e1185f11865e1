package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"koosdoos_back_end/internal/database"
)

// Extensions acceptées pour les fichiers de découpe personnalisés.
var allowedDesignExtensions = map[string]string{
	".dxf": "application/dxf",
	".svg": "image/svg+xml",
	".png": "image/png",
}

// UploadDesignFile stocke un fichier de découpe client dans MinIO et
// retourne la clé d'objet. Le nom est préfixé d'un UUID : deux clients
// peuvent envoyer "bokkie.dxf" sans s'écraser.
func UploadDesignFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedDesignExtensions[ext]
	if !ok {
		return "", fmt.Errorf("format %q non accepté (dxf, svg ou png)", ext)
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	objectName := uuid.NewString() + ext
	_, err = database.MinIO.PutObject(ctx, database.MinIOBucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("stockage fichier de découpe: %w", err)
	}

	log.Printf("🪣 Fichier de découpe stocké : %s (%d octets)", objectName, file.Size)
	return objectName, nil
}

// DesignFileURL génère une URL signée temporaire vers un fichier de
// découpe (l'atelier la consulte pour lancer la machine).
func DesignFileURL(ctx context.Context, objectName string, validity time.Duration) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}
	u, err := database.MinIO.PresignedGetObject(ctx, database.MinIOBucket, objectName, validity, nil)
	if err != nil {
		return "", fmt.Errorf("URL signée pour %s: %w", objectName, err)
	}
	return u.String(), nil
}
