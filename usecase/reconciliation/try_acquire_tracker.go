package reconciliation

import (
	"github.com/labstack/gommon/log"
)

func (u *reconciliationUsecase) acquireTracker(trackerID string) bool {
	if !u.locker.TryLock(trackerID) {
		log.Warnf("[LOCK_TRACKER] tracker_id:%s already in flight", trackerID)
		return false
	}
	log.Debugf("[LOCK_TRACKER] tracker_id:%s", trackerID)
	return true
}

func (u *reconciliationUsecase) releaseTracker(trackerID string) {
	u.locker.Unlock(trackerID)
	log.Debugf("[UNLOCK_TRACKER] tracker_id:%s", trackerID)
}
