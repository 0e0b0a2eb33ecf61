package i18n

var catalogs = map[string]map[string]string{
	LocaleEnglish: {
		"error.bad_request":              "Invalid request",
		"error.unauthorized":             "Unauthorized",
		"error.forbidden":                "You are not allowed to perform this action",
		"error.too_many_requests":        "Too many requests, please try again later",
		"error.rate_limited":             "Too many requests, please retry in %d seconds",
		"error.bid_rate_limited":         "You are bidding too fast, please retry in %d seconds",
		"error.internal":                 "Internal server error",
		"error.timeout":                  "The request timed out, please refresh and try again",
		"error.profile_id_invalid":       "Invalid profile id",
		"error.profile_id_type_invalid":  "Invalid profile id type",
		"error.profile_disabled":         "Account is disabled",
		"error.bid_amount_invalid":       "Bid amount must be a positive whole number",
		"error.bid_too_low":              "Minimum bid is KES %d",
		"error.bid_conflict":             "Another bid was placed at the same time, please refresh and try again",
		"error.self_bid_forbidden":       "You cannot bid on your own listing",
		"error.auction_closed":           "This auction has ended",
		"error.listing_not_found":        "Listing not found",
		"error.listing_invalid":          "Listing details are invalid",
		"error.auction_duration_invalid": "Auction duration must be between 6 and 24 hours",
		"error.listing_status_invalid":   "Listing cannot be changed in its current status",
		"error.listing_not_purchasable":  "This listing cannot be purchased",
		"error.order_not_found":          "Order not found",
		"error.order_item_invalid":       "Order items are invalid",
		"error.order_fetch_failed":       "Failed to load order",
		"error.illegal_transition":       "This status change is not allowed",
		"error.cash_already_confirmed":   "Cash has already been confirmed for this order",
		"error.agent_invalid":            "Selected agent is not valid for this order",
		"error.scan_code_required":       "A tracking code is required",
		"error.payment_invalid":          "Payment request is invalid",
		"error.payment_not_required":     "This order does not need payment",
		"error.payment_gateway_failed":   "Payment could not be started, please try again",
		"error.revenue_fetch_failed":     "Failed to load revenue",
		"error.auth_header_missing":      "Authorization header is missing",
		"error.auth_header_invalid":      "Authorization header is invalid",
		"error.token_invalid":            "Token is invalid or expired",
		"error.token_revoked":            "Token has been revoked, please sign in again",
		"error.not_found":                "Resource not found",
		"error.conflict":                 "The resource was changed concurrently, please refresh and try again",
		"error.listing_id_invalid":       "Invalid listing id",
		"error.order_id_invalid":         "Invalid order id",
		"error.target_status_invalid":    "Target status is invalid",
		"error.cash_not_collectable":     "This order is not awaiting cash collection",
		"error.actor_town_mismatch":      "This order is outside your town",
		"error.order_assigned_elsewhere": "This order is assigned to another agent",
		"error.payment_not_found":        "Payment not found",
		"error.profile_not_found":        "Profile not found",
		"error.bid_fetch_failed":         "Failed to load bids",
		"error.listing_fetch_failed":     "Failed to load listings",
		"error.event_fetch_failed":       "Failed to load fulfillment history",
		"error.delivery_town_required":   "Delivery town is required",
		"error.payment_method_invalid":   "Payment method is not supported",
		"error.listing_already_ordered":  "This listing has already been ordered",
		"sms.outbid":                     "You have been outbid on \"%s\". New highest bid: KES %d. Bid again: %s/listings/%d",
		"sms.auction_won":                "Congratulations! You won \"%s\" with a bid of KES %d. Complete your purchase: %s/listings/%d",
		"sms.order_placed":               "Order %s received. Total KES %s. Track it with code %s.",
		"sms.payment_success":            "Payment of KES %s for order %s received. Receipt %s.",
		"sms.payment_failed":             "Payment for order %s was not completed: %s",
	},
	LocaleSwahili: {
		"error.bad_request":        "Ombi si sahihi",
		"error.unauthorized":       "Hujaidhinishwa",
		"error.forbidden":          "Huruhusiwi kufanya kitendo hiki",
		"error.too_many_requests":  "Maombi mengi mno, jaribu tena baadaye",
		"error.rate_limited":       "Maombi mengi mno, jaribu tena baada ya sekunde %d",
		"error.internal":           "Hitilafu ya seva",
		"error.timeout":            "Muda wa ombi umeisha, onyesha upya na ujaribu tena",
		"error.bid_amount_invalid": "Kiasi cha zabuni lazima kiwe nambari kamili chanya",
		"error.bid_too_low":        "Zabuni ya chini ni KES %d",
		"error.bid_conflict":       "Zabuni nyingine imewekwa wakati huo huo, onyesha upya na ujaribu tena",
		"error.self_bid_forbidden": "Huwezi kuweka zabuni kwenye tangazo lako",
		"error.auction_closed":     "Mnada huu umekwisha",
		"error.listing_not_found":  "Tangazo halikupatikana",
		"error.order_not_found":    "Agizo halikupatikana",
		"error.illegal_transition": "Mabadiliko haya ya hali hayaruhusiwi",
		"error.scan_code_required": "Nambari ya ufuatiliaji inahitajika",
		"sms.outbid":               "Zabuni yako imepitwa kwenye \"%s\". Zabuni ya juu sasa: KES %d. Weka zabuni tena: %s/listings/%d",
	},
}
