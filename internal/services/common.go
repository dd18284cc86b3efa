package services

import (
	"context"

	"noticeboard/internal/apperr"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
)

// lookupErr maps a Find* failure to NotFound or Internal.
func lookupErr(err error, what string) error {
	if repository.IsNotFound(err) {
		return apperr.NotFound(what + " not found")
	}
	return apperr.Internal("failed to load "+what, err)
}

// activeUser loads the acting user and rejects blocked accounts.
func activeUser(ctx context.Context, repos *repository.Repositories, actor models.Actor) (*models.User, error) {
	user, err := repos.Users.FindByID(ctx, actor.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.Unauthorized("account no longer exists")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if user.IsBlocked() {
		return nil, apperr.Forbidden("account is blocked")
	}
	return user, nil
}

func requireOwner(actor models.Actor, resource models.Ownable, what string) error {
	if resource.OwnerID() != actor.UserID {
		return apperr.Forbidden("you can only modify your own " + what)
	}
	return nil
}

// purgeComments deletes the comments, their replies and every report
// pointing at any of them. It must run inside a transaction.
func purgeComments(ctx context.Context, repos *repository.Repositories, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	replyIDs, err := repos.Comments.FindReplyIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	all := append(append([]uint{}, ids...), replyIDs...)

	removed, err := repos.Reports.DeleteByTargets(ctx, models.TargetComment, all)
	if err != nil {
		return 0, err
	}
	if err := repos.Comments.DeleteByIDs(ctx, all); err != nil {
		return 0, err
	}
	return removed, nil
}

// purgeAnnouncements deletes the announcements with their comments and
// reactions, plus every report against any of them. It must run inside a
// transaction.
func purgeAnnouncements(ctx context.Context, repos *repository.Repositories, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	commentIDs, err := repos.Comments.FindIDsByAnnouncements(ctx, ids)
	if err != nil {
		return 0, err
	}

	commentReports, err := repos.Reports.DeleteByTargets(ctx, models.TargetComment, commentIDs)
	if err != nil {
		return 0, err
	}
	announcementReports, err := repos.Reports.DeleteByTargets(ctx, models.TargetAnnouncement, ids)
	if err != nil {
		return 0, err
	}
	if err := repos.Announcements.DeleteByIDs(ctx, ids); err != nil {
		return 0, err
	}
	return commentReports + announcementReports, nil
}
