package dashboard

const (
	msgCredentialsRequired = "ID와 비밀번호를 입력해 주세요."
	msgBalanceInvalid      = "초기 자산은 0 이상이어야 합니다."
	msgSignupDone          = "가입이 완료되었습니다. 이제 로그인해 주세요."
	msgSignupFailed        = "회원가입에 실패했습니다. 입력 정보를 다시 확인해 주세요."
	msgSignupUnavailable   = "회원가입 중 문제가 발생했어요. 잠시 후 다시 시도해 주세요."
	msgWelcome             = "%s님 환영합니다!"
	msgLoggedOut           = "로그아웃되었습니다."
	msgNotLoggedIn         = "로그인되어 있지 않습니다."
	msgLoginRequired       = "로그인 후 거래/관심종목 기능 사용 가능"
	msgSessionExpired      = "세션이 만료되었습니다. 다시 로그인해 주세요."
	msgStockRequired       = "종목을 선택해 주세요."
	msgQuantityInvalid     = "수량은 1 이상이어야 합니다."
	msgBuyDone             = "매수 완료"
	msgSellDone            = "매도 완료"
	msgWatchAdded          = "추가되었습니다."
	msgWatchRemoved        = "삭제 완료"
	msgPlayersLoaded       = "%d명 로드"
	msgItemsLoaded         = "%d개 로드"
	msgPlayerRequired      = "Player ID를 입력해 주세요."
)
