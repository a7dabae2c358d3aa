package common

const PointTransactionTopic = "point_transaction"
