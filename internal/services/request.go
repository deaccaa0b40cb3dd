package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/pdfmentor-backend/internal/platform/apierr"
	"github.com/yungbote/pdfmentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
)

func requireUserID(ctx context.Context) (uint, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == 0 {
		return 0, apierr.Unauthorized("not authenticated")
	}
	return rd.UserID, nil
}

// transactionRoot is the caller's transaction when there is one, else db.
func transactionRoot(dbc dbctx.Context, db *gorm.DB) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return db
}
